package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"book-discovery-recommendation-service/internal/recommend"
)

var predicateColumns = map[recommend.Field]string{
	recommend.FieldMood:        "b.mood",
	recommend.FieldPersonality: "b.personality_match",
	recommend.FieldComplexity:  "b.complexity",
}

// queryBuilder accumulates positional arguments for a parameterized query.
type queryBuilder struct {
	args []any
}

func (q *queryBuilder) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// where compiles a predicate into a SQL boolean expression over the books
// table aliased as b.
func (q *queryBuilder) where(p recommend.Predicate) (string, error) {
	switch p.Op {
	case recommend.OpEquals:
		col, ok := predicateColumns[p.Field]
		if !ok {
			return "", fmt.Errorf("unsupported equality field %q", p.Field)
		}
		return fmt.Sprintf("%s = %s", col, q.arg(p.Value)), nil

	case recommend.OpContains:
		if p.Field != recommend.FieldGenres {
			return "", fmt.Errorf("unsupported contains field %q", p.Field)
		}
		ids := make([]int64, len(p.Values))
		for i, v := range p.Values {
			ids[i] = int64(v)
		}
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = ANY(%s))",
			q.arg(pq.Array(ids)),
		), nil

	case recommend.OpAnd, recommend.OpOr:
		if len(p.Operands) == 0 {
			if p.Op == recommend.OpAnd {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		parts := make([]string, len(p.Operands))
		for i, o := range p.Operands {
			s, err := q.where(o)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		sep := " AND "
		if p.Op == recommend.OpOr {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")", nil

	default:
		return "", fmt.Errorf("unsupported predicate op %d", p.Op)
	}
}
