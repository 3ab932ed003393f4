package recommend

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"book-discovery-recommendation-service/internal/models"
)

// memoryCatalog evaluates predicates in memory.
type memoryCatalog struct {
	books     []models.Book
	err       error
	lastPred  Predicate
	lastLimit int
}

func (c *memoryCatalog) FindBooks(ctx context.Context, pred Predicate, limit int) ([]models.Book, error) {
	c.lastPred = pred
	c.lastLimit = limit
	if c.err != nil {
		return nil, c.err
	}
	var out []models.Book
	for _, b := range c.books {
		if pred.Matches(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Book) int { return a.ID - b.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memoryUsers is a UserContextProvider backed by maps.
type memoryUsers struct {
	mu           sync.Mutex
	prefs        map[int]*models.Preferences
	interactions []models.Interaction
	moods        []models.MoodEntry

	prefsErr        error
	interactionsErr error
	recordErr       error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{prefs: map[int]*models.Preferences{}}
}

func (u *memoryUsers) GetPreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	if u.prefsErr != nil {
		return nil, u.prefsErr
	}
	return u.prefs[userID], nil
}

func (u *memoryUsers) GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error) {
	if u.interactionsErr != nil {
		return nil, u.interactionsErr
	}
	var out []models.Interaction
	for _, in := range u.interactions {
		if in.UserID == userID && slices.Contains(bookIDs, in.BookID) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (u *memoryUsers) RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error) {
	if u.recordErr != nil {
		return nil, u.recordErr
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	entry := models.MoodEntry{
		ID:        len(u.moods) + 1,
		UserID:    userID,
		Mood:      mood,
		Intensity: intensity,
		Timestamp: time.Now(),
	}
	u.moods = append(u.moods, entry)
	return &entry, nil
}

type recKey struct {
	userID int
	bookID int
	mood   models.Mood
}

// memoryStore upserts recommendations by (user, book, mood).
type memoryStore struct {
	mu     sync.Mutex
	rows   map[recKey]*models.Recommendation
	nextID int
	calls  int
	failOn int // fail the n-th upsert (1-based) when > 0
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[recKey]*models.Recommendation{}}
}

func (s *memoryStore) UpsertRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return nil, fmt.Errorf("connection reset")
	}
	key := recKey{rec.UserID, rec.BookID, rec.Mood}
	if existing, ok := s.rows[key]; ok {
		existing.Score = rec.Score
		existing.Reason = rec.Reason
		existing.IsRead = false
		out := *existing
		return &out, nil
	}
	s.nextID++
	rec.ID = s.nextID
	rec.IsRead = false
	stored := rec
	s.rows[key] = &stored
	out := stored
	return &out, nil
}

func (s *memoryStore) markRead(userID, bookID int, mood models.Mood) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[recKey{userID, bookID, mood}].IsRead = true
}

func book(id int, mood models.Mood, personality models.Personality, complexity models.Complexity, genres ...int) models.Book {
	return models.Book{
		ID:               id,
		Title:            fmt.Sprintf("Book %d", id),
		Mood:             mood,
		PersonalityMatch: personality,
		Complexity:       complexity,
		GenreIDs:         genres,
	}
}
