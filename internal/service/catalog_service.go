package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/metrics"
	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
	"book-discovery-recommendation-service/internal/repository"
)

// CatalogService serves the book catalog and imports catalog files.
type CatalogService struct {
	repo  BookStore
	cache cache
	ttl   time.Duration
}

func NewCatalogService(repo BookStore, rdb *redis.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: repo, cache: newCache(rdb, "catalog"), ttl: ttl}
}

// ListBooks returns a filtered, paginated list of books.
func (s *CatalogService) ListBooks(ctx context.Context, params models.BookListParams) (*models.BookListResponse, error) {
	params.Validate()

	cacheKey := fmt.Sprintf("books:list:%d:%d:%s:%s:%s:%s:%s:%s:%s",
		params.Page, params.PageSize, params.SortBy, params.Order,
		params.Mood, params.Personality, params.Complexity,
		strings.ToLower(params.Genre), strings.ToLower(params.Search))

	var cached models.BookListResponse
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	result, err := s.repo.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	s.cache.set(ctx, cacheKey, result, s.ttl)
	return result, nil
}

// GetBook returns one book. Missing books surface the repository's ErrNotFound.
func (s *CatalogService) GetBook(ctx context.Context, id int) (*models.Book, error) {
	cacheKey := fmt.Sprintf("books:detail:%d", id)

	var cached models.Book
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, cacheKey, book, s.ttl)
	return book, nil
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var cached []models.Genre
	if s.cache.get(ctx, "books:genres", &cached) {
		return cached, nil
	}
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	s.cache.set(ctx, "books:genres", genres, s.ttl)
	return genres, nil
}

func (s *CatalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var cached []models.Author
	if s.cache.get(ctx, "books:authors", &cached) {
		return cached, nil
	}
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	s.cache.set(ctx, "books:authors", authors, s.ttl)
	return authors, nil
}

// ImportCatalogFile imports the catalog stored at path.
func (s *CatalogService) ImportCatalogFile(ctx context.Context, path string) (*models.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return s.ImportCatalog(ctx, f)
}

// ImportCatalog upserts the genres, authors and books of a catalog file.
// Books reference authors and genres by name; an author missing from the
// file's author list is created with an empty bio. The whole file is
// validated before anything is written, and all writes share one
// transaction so a failed import leaves the catalog unchanged.
func (s *CatalogService) ImportCatalog(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	var file models.CatalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, &recommend.ValidationError{Field: "catalog", Err: fmt.Errorf("decode catalog: %w", err)}
	}
	if err := validateCatalog(file); err != nil {
		return nil, err
	}

	slog.Info("starting catalog import", "genres", len(file.Genres), "authors", len(file.Authors), "books", len(file.Books))

	var result *models.ImportResult
	err := s.repo.WithinTx(ctx, func(w repository.CatalogWriter) error {
		var err error
		result, err = writeCatalog(ctx, w, file)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.delPattern(ctx, "books:*")
	metrics.RecordImport(result.Genres, result.Authors, result.Books)
	slog.Info("catalog import completed", "genres", result.Genres, "authors", result.Authors, "books", result.Books)
	return result, nil
}

func writeCatalog(ctx context.Context, w repository.CatalogWriter, file models.CatalogFile) (*models.ImportResult, error) {
	genreIDs := make(map[string]int, len(file.Genres))
	for _, g := range file.Genres {
		id, err := w.UpsertGenre(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("upsert genre %q: %w", g.Name, err)
		}
		genreIDs[strings.ToLower(g.Name)] = id
	}

	authorIDs := make(map[string]int, len(file.Authors))
	for _, a := range file.Authors {
		id, err := w.UpsertAuthor(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("upsert author %q: %w", a.Name, err)
		}
		authorIDs[strings.ToLower(a.Name)] = id
	}

	result := &models.ImportResult{Genres: len(genreIDs), Authors: len(authorIDs)}
	for _, cb := range file.Books {
		authorID, ok := authorIDs[strings.ToLower(cb.Author)]
		if !ok {
			id, err := w.UpsertAuthor(ctx, models.Author{Name: cb.Author})
			if err != nil {
				return nil, fmt.Errorf("upsert author %q: %w", cb.Author, err)
			}
			authorIDs[strings.ToLower(cb.Author)] = id
			authorID = id
			result.Authors++
		}

		book := &models.Book{
			Title:            cb.Title,
			AuthorID:         authorID,
			Description:      cb.Description,
			CoverURL:         cb.CoverURL,
			PublishedDate:    cb.PublishedDate,
			Mood:             cb.Mood,
			Themes:           cb.Themes,
			Complexity:       cb.Complexity,
			PersonalityMatch: cb.PersonalityMatch,
			PageCount:        cb.PageCount,
			ISBN:             cb.ISBN,
			Language:         cb.Language,
		}
		bookID, err := w.UpsertBook(ctx, book)
		if err != nil {
			return nil, fmt.Errorf("upsert book %q: %w", cb.Title, err)
		}

		if err := w.ClearBookGenres(ctx, bookID); err != nil {
			return nil, fmt.Errorf("clear genres of %q: %w", cb.Title, err)
		}
		for _, name := range cb.Genres {
			if err := w.LinkBookGenre(ctx, bookID, genreIDs[strings.ToLower(name)]); err != nil {
				return nil, fmt.Errorf("link %q to %q: %w", cb.Title, name, err)
			}
		}
		result.Books++
	}
	return result, nil
}

func validateCatalog(file models.CatalogFile) error {
	genres := make(map[string]bool, len(file.Genres))
	for _, g := range file.Genres {
		if strings.TrimSpace(g.Name) == "" {
			return catalogError("genre name is required")
		}
		genres[strings.ToLower(g.Name)] = true
	}
	for _, a := range file.Authors {
		if strings.TrimSpace(a.Name) == "" {
			return catalogError("author name is required")
		}
	}
	for i, b := range file.Books {
		switch {
		case strings.TrimSpace(b.Title) == "":
			return catalogError("book %d: title is required", i)
		case strings.TrimSpace(b.Author) == "":
			return catalogError("book %q: author is required", b.Title)
		case !b.Mood.Valid():
			return catalogError("book %q: unknown mood %q", b.Title, b.Mood)
		case !b.Complexity.Valid():
			return catalogError("book %q: unknown complexity %q", b.Title, b.Complexity)
		case !b.PersonalityMatch.Valid():
			return catalogError("book %q: unknown personality %q", b.Title, b.PersonalityMatch)
		}
		if b.PublishedDate != "" {
			if _, err := time.Parse(time.DateOnly, b.PublishedDate); err != nil {
				return catalogError("book %q: published_date must be YYYY-MM-DD", b.Title)
			}
		}
		for _, g := range b.Genres {
			if !genres[strings.ToLower(g)] {
				return catalogError("book %q: unknown genre %q", b.Title, g)
			}
		}
	}
	return nil
}

func catalogError(format string, args ...any) error {
	return &recommend.ValidationError{Field: "catalog", Err: fmt.Errorf(format, args...)}
}
