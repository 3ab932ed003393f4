package recommend

import (
	"context"
	"errors"
	"slices"
	"testing"

	"book-discovery-recommendation-service/internal/models"
)

func TestRankAndPersist_MissingMood(t *testing.T) {
	users := newMemoryUsers()
	store := newMemoryStore()
	r := NewRanker(&memoryCatalog{}, users, store)

	_, err := r.RankAndPersist(context.Background(), 1, "", 5)

	if !IsValidation(err) {
		t.Fatalf("RankAndPersist() error = %v, want ValidationError", err)
	}
	if !errors.Is(err, ErrMoodRequired) {
		t.Errorf("error should wrap ErrMoodRequired, got %v", err)
	}
	if len(users.moods) != 0 {
		t.Errorf("mood history written before validation: %d entries", len(users.moods))
	}
	if store.calls != 0 {
		t.Errorf("store called %d times", store.calls)
	}
}

func TestRankAndPersist_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		mood      models.Mood
		intensity int
		want      error
	}{
		{name: "unknown mood", mood: "grumpy", intensity: 5, want: ErrUnknownMood},
		{name: "intensity too high", mood: models.MoodHappy, intensity: 11, want: ErrIntensityRange},
		{name: "negative intensity", mood: models.MoodHappy, intensity: -1, want: ErrIntensityRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemoryUsers()
			r := NewRanker(&memoryCatalog{}, users, newMemoryStore())

			_, err := r.RankAndPersist(context.Background(), 1, tt.mood, tt.intensity)

			if !IsValidation(err) || !errors.Is(err, tt.want) {
				t.Errorf("RankAndPersist() error = %v, want validation wrapping %v", err, tt.want)
			}
			if len(users.moods) != 0 {
				t.Errorf("mood recorded for invalid input")
			}
		})
	}
}

func TestRankAndPersist_RecordsMoodWithDefaultIntensity(t *testing.T) {
	users := newMemoryUsers()
	r := NewRanker(&memoryCatalog{}, users, newMemoryStore())

	recs, err := r.RankAndPersist(context.Background(), 9, models.MoodExcited, 0)
	if err != nil {
		t.Fatalf("RankAndPersist() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no recommendations from empty catalog, got %d", len(recs))
	}
	if len(users.moods) != 1 {
		t.Fatalf("mood entries = %d, want 1", len(users.moods))
	}
	if got := users.moods[0]; got.Intensity != DefaultIntensity || got.Mood != models.MoodExcited || got.UserID != 9 {
		t.Errorf("recorded mood = %+v", got)
	}
}

func TestRankAndPersist_OrdersByScoreThenBookID(t *testing.T) {
	catalog := &memoryCatalog{books: []models.Book{
		book(5, models.MoodThoughtful, models.PersonalityAnalytical, models.ComplexityChallenging, 6),
		book(2, models.MoodHappy, models.PersonalityAnalytical, models.ComplexityEasy, 6),
		book(3, models.MoodThoughtful, models.PersonalityCreative, models.ComplexityEasy, 6),
		book(1, models.MoodThoughtful, models.PersonalityPractical, models.ComplexityMedium, 6),
		book(4, models.MoodThoughtful, models.PersonalityAnalytical, models.ComplexityMedium, 1),
	}}
	users := newMemoryUsers()
	users.prefs[7] = &models.Preferences{
		UserID:              7,
		PersonalityTrait:    models.PersonalityAnalytical,
		PreferredComplexity: models.ComplexityChallenging,
		FavoriteGenreIDs:    []int{6},
	}
	users.interactions = []models.Interaction{
		{UserID: 7, BookID: 5, Type: models.InteractionLike},
		{UserID: 8, BookID: 1, Type: models.InteractionLike},
	}
	store := newMemoryStore()

	recs, err := NewRanker(catalog, users, store).RankAndPersist(context.Background(), 7, models.MoodThoughtful, 8)
	if err != nil {
		t.Fatalf("RankAndPersist() error = %v", err)
	}

	// 5: 50+20+15+10+5 capped at 100; 1 and 3: 70; 2: 65; 4 lacks the favorite genre
	wantIDs := []int{5, 1, 3, 2}
	wantScores := []float64{100, 70, 70, 65}
	for i, rec := range recs {
		if i >= len(wantIDs) {
			break
		}
		if rec.BookID != wantIDs[i] || rec.Score != wantScores[i] {
			t.Errorf("recs[%d] = book %d score %v, want book %d score %v", i, rec.BookID, rec.Score, wantIDs[i], wantScores[i])
		}
		if rec.Book == nil || rec.Book.ID != rec.BookID {
			t.Errorf("recs[%d] missing book details", i)
		}
		if rec.IsRead {
			t.Errorf("recs[%d] is_read = true", i)
		}
	}
	if len(recs) != len(wantIDs) {
		t.Fatalf("got %d recommendations, want %d", len(recs), len(wantIDs))
	}
	if want := "This book matches your current thoughtful mood and your analytical personality"; recs[0].Reason != want {
		t.Errorf("reason = %q, want %q", recs[0].Reason, want)
	}
	if users.moods[0].Intensity != 8 {
		t.Errorf("intensity = %d, want 8", users.moods[0].Intensity)
	}
}

func TestRankAndPersist_IdempotentAndResetsRead(t *testing.T) {
	catalog := &memoryCatalog{books: []models.Book{
		book(1, models.MoodCurious, models.PersonalityAnalytical, models.ComplexityMedium),
		book(2, models.MoodCurious, models.PersonalityCreative, models.ComplexityEasy),
	}}
	users := newMemoryUsers()
	store := newMemoryStore()
	r := NewRanker(catalog, users, store)
	ctx := context.Background()

	first, err := r.RankAndPersist(ctx, 3, models.MoodCurious, 5)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	store.markRead(3, 1, models.MoodCurious)

	// a like between runs changes the score in place
	users.interactions = append(users.interactions, models.Interaction{UserID: 3, BookID: 2, Type: models.InteractionLike})

	second, err := r.RankAndPersist(ctx, 3, models.MoodCurious, 5)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("stored rows = %d, want 2", len(store.rows))
	}
	for key, row := range store.rows {
		if row.IsRead {
			t.Errorf("row %+v still read after recompute", key)
		}
	}
	if got := store.rows[recKey{3, 2, models.MoodCurious}].Score; got != 75 {
		t.Errorf("book 2 score = %v, want 75", got)
	}
	if first[0].ID != second[1].ID && first[0].ID != second[0].ID {
		t.Errorf("recompute created new ids: first=%v second=%v", first, second)
	}
	if second[0].BookID != 2 {
		t.Errorf("liked book should rank first, got book %d", second[0].BookID)
	}
	if len(users.moods) != 2 {
		t.Errorf("mood history entries = %d, want 2", len(users.moods))
	}

	// a different mood is a different key
	if _, err := r.RankAndPersist(ctx, 3, models.MoodHappy, 5); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if len(store.rows) != 2 {
		t.Errorf("happy mood matched nothing, rows = %d, want 2", len(store.rows))
	}
}

func TestRankAndPersist_PersistenceFailure(t *testing.T) {
	catalog := &memoryCatalog{books: []models.Book{
		book(1, models.MoodSad, models.PersonalityIntrovert, models.ComplexityMedium),
		book(2, models.MoodSad, models.PersonalityIntrovert, models.ComplexityMedium),
	}}
	store := newMemoryStore()
	store.failOn = 2

	recs, err := NewRanker(catalog, newMemoryUsers(), store).RankAndPersist(context.Background(), 1, models.MoodSad, 5)

	if !IsPersistence(err) {
		t.Fatalf("RankAndPersist() error = %v, want PersistenceError", err)
	}
	if recs != nil {
		t.Errorf("partial results returned: %v", recs)
	}
}

func TestRankAndPersist_RecordMoodFailure(t *testing.T) {
	users := newMemoryUsers()
	users.recordErr = errors.New("disk full")
	store := newMemoryStore()

	_, err := NewRanker(&memoryCatalog{}, users, store).RankAndPersist(context.Background(), 1, models.MoodSad, 5)

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "record mood" {
		t.Fatalf("error = %v, want record mood PersistenceError", err)
	}
	if store.calls != 0 {
		t.Errorf("store called after mood failure")
	}
}

func TestRankAndPersist_ReadFailuresPropagate(t *testing.T) {
	catalog := &memoryCatalog{books: []models.Book{book(1, models.MoodSad, models.PersonalityIntrovert, models.ComplexityMedium)}}
	boom := errors.New("timeout")

	users := newMemoryUsers()
	users.prefsErr = boom
	if _, err := NewRanker(catalog, users, newMemoryStore()).RankAndPersist(context.Background(), 1, models.MoodSad, 5); !errors.Is(err, boom) {
		t.Errorf("preferences error = %v, want %v", err, boom)
	}

	users = newMemoryUsers()
	users.interactionsErr = boom
	if _, err := NewRanker(catalog, users, newMemoryStore()).RankAndPersist(context.Background(), 1, models.MoodSad, 5); !errors.Is(err, boom) {
		t.Errorf("interactions error = %v, want %v", err, boom)
	}
}

func TestRankAndPersist_CandidateLimitOption(t *testing.T) {
	var books []models.Book
	for id := 1; id <= 6; id++ {
		books = append(books, book(id, models.MoodInspired, models.PersonalityPractical, models.ComplexityMedium))
	}

	recs, err := NewRanker(&memoryCatalog{books: books}, newMemoryUsers(), newMemoryStore(), WithCandidateLimit(3)).
		RankAndPersist(context.Background(), 1, models.MoodInspired, 5)
	if err != nil {
		t.Fatalf("RankAndPersist() error = %v", err)
	}

	got := make([]int, len(recs))
	for i, r := range recs {
		got[i] = r.BookID
	}
	if want := []int{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("book ids = %v, want %v", got, want)
	}
}
