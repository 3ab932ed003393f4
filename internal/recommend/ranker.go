package recommend

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"book-discovery-recommendation-service/internal/models"
)

// DefaultIntensity is recorded when a suggestion omits the mood intensity.
const DefaultIntensity = 5

// UserContextProvider exposes the user data the ranker reads and the mood
// history it appends to.
type UserContextProvider interface {
	// GetPreferences returns nil, nil when the user has no preferences yet.
	GetPreferences(ctx context.Context, userID int) (*models.Preferences, error)
	// GetInteractions returns the user's interactions with any of bookIDs.
	GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error)
	RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error)
}

// RecommendationStore persists recommendations keyed by (user, book, mood).
type RecommendationStore interface {
	// UpsertRecommendation inserts rec or overwrites score and reason of the
	// existing row for the same key, resetting is_read to false.
	UpsertRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error)
}

// Ranker selects, scores, persists and orders recommendations.
type Ranker struct {
	selector *Selector
	users    UserContextProvider
	store    RecommendationStore
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*rankerOptions)

type rankerOptions struct {
	candidateLimit int
	logger         *slog.Logger
}

// WithCandidateLimit overrides DefaultCandidateLimit.
func WithCandidateLimit(n int) Option {
	return func(o *rankerOptions) { o.candidateLimit = n }
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *rankerOptions) { o.logger = l }
}

// NewRanker wires a Ranker over its collaborators.
func NewRanker(catalog CatalogProvider, users UserContextProvider, store RecommendationStore, opts ...Option) *Ranker {
	o := rankerOptions{candidateLimit: DefaultCandidateLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Ranker{
		selector: NewSelector(catalog, o.candidateLimit),
		users:    users,
		store:    store,
		logger:   o.logger,
	}
}

// RankAndPersist records the mood, recomputes the user's recommendations for
// it and returns them ordered by score descending, then book id ascending.
// An intensity of zero means DefaultIntensity.
func (r *Ranker) RankAndPersist(ctx context.Context, userID int, mood models.Mood, intensity int) ([]models.Recommendation, error) {
	if err := validateSuggestion(mood, intensity); err != nil {
		return nil, err
	}
	if intensity == 0 {
		intensity = DefaultIntensity
	}

	if _, err := r.users.RecordMood(ctx, userID, mood, intensity); err != nil {
		return nil, &PersistenceError{Op: "record mood", Err: err}
	}

	prefs, err := r.users.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	candidates, err := r.selector.SelectCandidates(ctx, mood, prefs)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("candidates selected",
		"user_id", userID,
		"mood", mood,
		"has_preferences", prefs != nil,
		"candidates", len(candidates),
	)

	if len(candidates) == 0 {
		return []models.Recommendation{}, nil
	}

	bookIDs := make([]int, len(candidates))
	for i, b := range candidates {
		bookIDs[i] = b.ID
	}
	interactions, err := r.users.GetInteractions(ctx, userID, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("get interactions: %w", err)
	}

	recs := make([]models.Recommendation, 0, len(candidates))
	for _, book := range candidates {
		score, reason := Score(book, mood, prefs, interactions)

		stored, err := r.store.UpsertRecommendation(ctx, models.Recommendation{
			UserID: userID,
			BookID: book.ID,
			Mood:   mood,
			Score:  score,
			Reason: reason,
			IsRead: false,
		})
		if err != nil {
			return nil, &PersistenceError{Op: "upsert recommendation", Err: err}
		}

		rec := *stored
		b := book
		rec.Book = &b
		recs = append(recs, rec)
	}

	SortRecommendations(recs)
	return recs, nil
}

// SortRecommendations orders recs by score descending, then book id ascending.
func SortRecommendations(recs []models.Recommendation) {
	slices.SortStableFunc(recs, func(a, b models.Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.BookID, b.BookID)
	})
}

func validateSuggestion(mood models.Mood, intensity int) error {
	if mood == "" {
		return &ValidationError{Field: "mood", Err: ErrMoodRequired}
	}
	if !mood.Valid() {
		return &ValidationError{Field: "mood", Err: fmt.Errorf("%w: %q", ErrUnknownMood, mood)}
	}
	if intensity != 0 && (intensity < 1 || intensity > 10) {
		return &ValidationError{Field: "intensity", Err: ErrIntensityRange}
	}
	return nil
}
