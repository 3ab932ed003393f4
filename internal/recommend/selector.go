package recommend

import (
	"context"
	"fmt"
	"slices"

	"book-discovery-recommendation-service/internal/models"
)

// DefaultCandidateLimit caps how many books are scored per suggestion.
const DefaultCandidateLimit = 10

// CatalogProvider returns books matching a predicate. Implementations should
// return at most limit books ordered by id ascending.
type CatalogProvider interface {
	FindBooks(ctx context.Context, pred Predicate, limit int) ([]models.Book, error)
}

// CandidateQuery builds the selection predicate for a mood and optional
// preferences: the mood tag, the preferred personality or the preferred
// complexity must match, and when favorite genres exist the book must carry
// at least one of them.
func CandidateQuery(mood models.Mood, prefs *models.Preferences) Predicate {
	branches := []Predicate{Equals(FieldMood, string(mood))}
	if prefs != nil {
		if prefs.PersonalityTrait != "" {
			branches = append(branches, Equals(FieldPersonality, string(prefs.PersonalityTrait)))
		}
		if prefs.PreferredComplexity != "" {
			branches = append(branches, Equals(FieldComplexity, string(prefs.PreferredComplexity)))
		}
	}

	pred := Or(branches...)
	if prefs != nil && len(prefs.FavoriteGenreIDs) > 0 {
		pred = And(pred, Contains(FieldGenres, prefs.FavoriteGenreIDs))
	}
	return pred
}

// Selector retrieves candidate books for a mood.
type Selector struct {
	catalog CatalogProvider
	limit   int
}

// NewSelector creates a Selector. A non-positive limit uses DefaultCandidateLimit.
func NewSelector(catalog CatalogProvider, limit int) *Selector {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	return &Selector{catalog: catalog, limit: limit}
}

// SelectCandidates returns up to the selector's limit of distinct books
// matching CandidateQuery, ordered by id ascending.
func (s *Selector) SelectCandidates(ctx context.Context, mood models.Mood, prefs *models.Preferences) ([]models.Book, error) {
	pred := CandidateQuery(mood, prefs)

	books, err := s.catalog.FindBooks(ctx, pred, s.limit)
	if err != nil {
		return nil, fmt.Errorf("find candidate books: %w", err)
	}

	return normalizeCandidates(books, pred, s.limit), nil
}

// normalizeCandidates drops non-matching and duplicate books, orders by id and
// truncates. The predicate is authoritative over what a provider returns.
func normalizeCandidates(books []models.Book, pred Predicate, limit int) []models.Book {
	seen := make(map[int]struct{}, len(books))
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if _, dup := seen[b.ID]; dup {
			continue
		}
		if !pred.Matches(b) {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b models.Book) int { return a.ID - b.ID })

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
