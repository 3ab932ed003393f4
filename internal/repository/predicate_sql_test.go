package repository

import (
	"database/sql/driver"
	"testing"

	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
)

func TestQueryBuilderWhere(t *testing.T) {
	prefs := &models.Preferences{
		PersonalityTrait:    models.PersonalityAnalytical,
		PreferredComplexity: models.ComplexityMedium,
		FavoriteGenreIDs:    []int{2, 5},
	}

	tests := []struct {
		name     string
		pred     recommend.Predicate
		want     string
		wantArgs int
	}{
		{
			name:     "mood only",
			pred:     recommend.CandidateQuery(models.MoodCurious, nil),
			want:     "(b.mood = $1)",
			wantArgs: 1,
		},
		{
			name:     "preferences with favorites",
			pred:     recommend.CandidateQuery(models.MoodCurious, prefs),
			want:     "((b.mood = $1 OR b.personality_match = $2 OR b.complexity = $3) AND EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = ANY($4)))",
			wantArgs: 4,
		},
		{name: "empty and", pred: recommend.And(), want: "TRUE"},
		{name: "empty or", pred: recommend.Or(), want: "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q queryBuilder
			got, err := q.where(tt.pred)
			if err != nil {
				t.Fatalf("where() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("where() =\n  %s\nwant\n  %s", got, tt.want)
			}
			if len(q.args) != tt.wantArgs {
				t.Errorf("args = %d, want %d", len(q.args), tt.wantArgs)
			}
		})
	}
}

func TestQueryBuilderWhere_GenreArgument(t *testing.T) {
	var q queryBuilder
	if _, err := q.where(recommend.Contains(recommend.FieldGenres, []int{3, 7})); err != nil {
		t.Fatalf("where() error = %v", err)
	}

	v, ok := q.args[0].(driver.Valuer)
	if !ok {
		t.Fatalf("genre argument %T is not a driver.Valuer", q.args[0])
	}
	got, err := v.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if got != "{3,7}" {
		t.Errorf("genre argument = %v, want {3,7}", got)
	}
}

func TestQueryBuilderWhere_Unsupported(t *testing.T) {
	tests := []recommend.Predicate{
		recommend.Equals("title", "Dune"),
		recommend.Contains(recommend.FieldMood, []int{1}),
		recommend.Or(recommend.Equals(recommend.FieldMood, "sad"), recommend.Equals("isbn", "x")),
	}
	for _, p := range tests {
		var q queryBuilder
		if _, err := q.where(p); err == nil {
			t.Errorf("where(%s) expected error", p)
		}
	}
}
