package recommend

import (
	"fmt"
	"slices"
	"strings"

	"book-discovery-recommendation-service/internal/models"
)

// Field names a book attribute a Predicate can test.
type Field string

const (
	FieldMood        Field = "mood"
	FieldPersonality Field = "personality_match"
	FieldComplexity  Field = "complexity"
	FieldGenres      Field = "genres"
)

// Op is the kind of a Predicate node.
type Op int

const (
	// OpEquals tests a scalar field for equality with Value.
	OpEquals Op = iota
	// OpContains tests whether a set field intersects Values.
	OpContains
	// OpAnd is true when every operand is true. An empty And is true.
	OpAnd
	// OpOr is true when any operand is true. An empty Or is false.
	OpOr
)

// Predicate is an immutable boolean expression over book attributes. Catalog
// providers translate it into their own query language; Matches evaluates it
// in memory.
type Predicate struct {
	Op       Op
	Field    Field
	Value    string
	Values   []int
	Operands []Predicate
}

// Equals builds a scalar equality test.
func Equals(field Field, value string) Predicate {
	return Predicate{Op: OpEquals, Field: field, Value: value}
}

// Contains builds a set-intersection test against ids.
func Contains(field Field, ids []int) Predicate {
	return Predicate{Op: OpContains, Field: field, Values: slices.Clone(ids)}
}

// And builds a conjunction.
func And(operands ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Operands: slices.Clone(operands)}
}

// Or builds a disjunction.
func Or(operands ...Predicate) Predicate {
	return Predicate{Op: OpOr, Operands: slices.Clone(operands)}
}

// Matches reports whether book satisfies p.
func (p Predicate) Matches(book models.Book) bool {
	switch p.Op {
	case OpEquals:
		v, ok := scalarField(book, p.Field)
		return ok && v == p.Value
	case OpContains:
		if p.Field != FieldGenres {
			return false
		}
		for _, id := range p.Values {
			if book.HasGenre(id) {
				return true
			}
		}
		return false
	case OpAnd:
		for _, o := range p.Operands {
			if !o.Matches(book) {
				return false
			}
		}
		return true
	case OpOr:
		for _, o := range p.Operands {
			if o.Matches(book) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders p in a compact prefix form, e.g.
// and(or(mood=curious,complexity=medium),genres∩[1 2]).
func (p Predicate) String() string {
	switch p.Op {
	case OpEquals:
		return fmt.Sprintf("%s=%s", p.Field, p.Value)
	case OpContains:
		return fmt.Sprintf("%s∩%v", p.Field, p.Values)
	case OpAnd, OpOr:
		name := "and"
		if p.Op == OpOr {
			name = "or"
		}
		parts := make([]string, len(p.Operands))
		for i, o := range p.Operands {
			parts[i] = o.String()
		}
		return name + "(" + strings.Join(parts, ",") + ")"
	default:
		return "invalid"
	}
}

func scalarField(book models.Book, field Field) (string, bool) {
	switch field {
	case FieldMood:
		return string(book.Mood), true
	case FieldPersonality:
		return string(book.PersonalityMatch), true
	case FieldComplexity:
		return string(book.Complexity), true
	default:
		return "", false
	}
}
