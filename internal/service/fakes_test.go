package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
	"book-discovery-recommendation-service/internal/repository"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

type fakeBookStore struct {
	mu      sync.Mutex
	books   map[int]models.Book
	genres  map[string]int
	authors map[string]int
	links   map[int][]int
	getHits int
	// failBook makes UpsertBook fail for the book with this title.
	failBook string
}

func newFakeBookStore(books ...models.Book) *fakeBookStore {
	s := &fakeBookStore{
		books:   map[int]models.Book{},
		genres:  map[string]int{},
		authors: map[string]int{},
		links:   map[int][]int{},
	}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func (s *fakeBookStore) FindBooks(ctx context.Context, pred recommend.Predicate, limit int) ([]models.Book, error) {
	var out []models.Book
	for _, b := range s.books {
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

func (s *fakeBookStore) ListBooks(ctx context.Context, params models.BookListParams) (*models.BookListResponse, error) {
	var data []models.Book
	for _, b := range s.books {
		if params.Mood == "" || b.Mood == params.Mood {
			data = append(data, b)
		}
	}
	slices.SortFunc(data, func(a, b models.Book) int { return a.ID - b.ID })
	return &models.BookListResponse{Page: params.Page, PageSize: params.PageSize, TotalResults: len(data), TotalPages: 1, Data: data}, nil
}

func (s *fakeBookStore) GetBook(ctx context.Context, id int) (*models.Book, error) {
	s.getHits++
	b, ok := s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *fakeBookStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var out []models.Genre
	for name, id := range s.genres {
		out = append(out, models.Genre{ID: id, Name: name})
	}
	return out, nil
}

func (s *fakeBookStore) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var out []models.Author
	for name, id := range s.authors {
		out = append(out, models.Author{ID: id, Name: name})
	}
	return out, nil
}

func (s *fakeBookStore) WithinTx(ctx context.Context, fn func(repository.CatalogWriter) error) error {
	books, genres, authors, links := maps.Clone(s.books), maps.Clone(s.genres), maps.Clone(s.authors), maps.Clone(s.links)
	if err := fn(s); err != nil {
		s.books, s.genres, s.authors, s.links = books, genres, authors, links
		return err
	}
	return nil
}

func (s *fakeBookStore) UpsertGenre(ctx context.Context, g models.Genre) (int, error) {
	if id, ok := s.genres[g.Name]; ok {
		return id, nil
	}
	s.genres[g.Name] = len(s.genres) + 1
	return s.genres[g.Name], nil
}

func (s *fakeBookStore) UpsertAuthor(ctx context.Context, a models.Author) (int, error) {
	if id, ok := s.authors[a.Name]; ok {
		return id, nil
	}
	s.authors[a.Name] = len(s.authors) + 1
	return s.authors[a.Name], nil
}

func (s *fakeBookStore) UpsertBook(ctx context.Context, b *models.Book) (int, error) {
	if s.failBook != "" && b.Title == s.failBook {
		return 0, errors.New("connection reset")
	}
	for id, existing := range s.books {
		if existing.Title == b.Title && existing.AuthorID == b.AuthorID {
			stored := *b
			stored.ID = id
			s.books[id] = stored
			return id, nil
		}
	}
	stored := *b
	stored.ID = len(s.books) + 1
	s.books[stored.ID] = stored
	return stored.ID, nil
}

func (s *fakeBookStore) LinkBookGenre(ctx context.Context, bookID, genreID int) error {
	s.links[bookID] = append(s.links[bookID], genreID)
	b := s.books[bookID]
	b.GenreIDs = append(b.GenreIDs, genreID)
	s.books[bookID] = b
	return nil
}

func (s *fakeBookStore) ClearBookGenres(ctx context.Context, bookID int) error {
	delete(s.links, bookID)
	b := s.books[bookID]
	b.GenreIDs = nil
	s.books[bookID] = b
	return nil
}

type fakeUserStore struct {
	mu           sync.Mutex
	prefs        map[int]*models.Preferences
	moods        []models.MoodEntry
	interactions []models.Interaction
	prefReads    int
	updates      int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{prefs: map[int]*models.Preferences{}}
}

func (s *fakeUserStore) GetPreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	s.prefReads++
	p, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeUserStore) GetOrCreatePreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	s.prefReads++
	if _, ok := s.prefs[userID]; !ok {
		d := models.DefaultPreferences(userID)
		s.prefs[userID] = &d
	}
	cp := *s.prefs[userID]
	return &cp, nil
}

func (s *fakeUserStore) UpdatePreferences(ctx context.Context, p *models.Preferences) (*models.Preferences, error) {
	s.updates++
	cp := *p
	s.prefs[p.UserID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeUserStore) RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.MoodEntry{ID: len(s.moods) + 1, UserID: userID, Mood: mood, Intensity: intensity, Timestamp: time.Now()}
	s.moods = append(s.moods, m)
	return &m, nil
}

func (s *fakeUserStore) ListMoods(ctx context.Context, userID, limit int) ([]models.MoodEntry, error) {
	var out []models.MoodEntry
	for i := len(s.moods) - 1; i >= 0 && len(out) < limit; i-- {
		if s.moods[i].UserID == userID {
			out = append(out, s.moods[i])
		}
	}
	return out, nil
}

func (s *fakeUserStore) GetMood(ctx context.Context, userID, moodID int) (*models.MoodEntry, error) {
	for _, m := range s.moods {
		if m.ID == moodID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) DeleteMood(ctx context.Context, userID, moodID int) error {
	for i, m := range s.moods {
		if m.ID == moodID && m.UserID == userID {
			s.moods = slices.Delete(s.moods, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeUserStore) CreateInteraction(ctx context.Context, userID int, req models.CreateInteractionRequest) (*models.Interaction, error) {
	in := models.Interaction{ID: len(s.interactions) + 1, UserID: userID, BookID: req.BookID, Type: req.InteractionType, Rating: req.Rating, Timestamp: time.Now()}
	s.interactions = append(s.interactions, in)
	return &in, nil
}

func (s *fakeUserStore) GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, in := range s.interactions {
		if in.UserID == userID && slices.Contains(bookIDs, in.BookID) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ListInteractions(ctx context.Context, userID, limit int) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, in := range s.interactions {
		if in.UserID == userID && len(out) < limit {
			out = append(out, in)
		}
	}
	return out, nil
}

type recKey struct {
	userID, bookID int
	mood           models.Mood
}

type fakeRecStore struct {
	mu    sync.Mutex
	rows  map[recKey]*models.Recommendation
	lists int
}

func newFakeRecStore() *fakeRecStore {
	return &fakeRecStore{rows: map[recKey]*models.Recommendation{}}
}

func (s *fakeRecStore) UpsertRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recKey{rec.UserID, rec.BookID, rec.Mood}
	if existing, ok := s.rows[key]; ok {
		rec.ID = existing.ID
	} else {
		rec.ID = len(s.rows) + 1
	}
	rec.IsRead = false
	stored := rec
	s.rows[key] = &stored
	out := stored
	return &out, nil
}

func (s *fakeRecStore) ListRecommendations(ctx context.Context, userID int, mood models.Mood) ([]models.Recommendation, error) {
	s.lists++
	var out []models.Recommendation
	for k, r := range s.rows {
		if k.userID == userID && (mood == "" || k.mood == mood) {
			out = append(out, *r)
		}
	}
	recommend.SortRecommendations(out)
	return out, nil
}

func (s *fakeRecStore) SetRead(ctx context.Context, userID, recID int, isRead bool) (*models.Recommendation, error) {
	for k, r := range s.rows {
		if r.ID == recID && k.userID == userID {
			r.IsRead = isRead
			out := *r
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
