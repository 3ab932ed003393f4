package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
)

// BookRepository handles database operations for the catalog.
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = `
	b.id, b.title, b.author_id, a.name,
	COALESCE(b.description, ''), COALESCE(b.cover_url, ''),
	COALESCE(TO_CHAR(b.published_date, 'YYYY-MM-DD'), ''),
	b.mood, COALESCE(b.themes, ''), b.complexity, b.personality_match,
	COALESCE(b.page_count, 0), COALESCE(b.isbn, ''), COALESCE(b.language, ''),
	b.created_at, b.updated_at,
	ARRAY(SELECT bg.genre_id FROM book_genres bg WHERE bg.book_id = b.id ORDER BY bg.genre_id),
	ARRAY(SELECT g.name FROM genres g INNER JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = b.id ORDER BY g.id)`

// bookRow holds scan targets for bookColumns.
type bookRow struct {
	book       models.Book
	genreIDs   pq.Int64Array
	genreNames pq.StringArray
}

func (r *bookRow) dest() []any {
	b := &r.book
	return []any{
		&b.ID, &b.Title, &b.AuthorID, &b.AuthorName,
		&b.Description, &b.CoverURL, &b.PublishedDate,
		&b.Mood, &b.Themes, &b.Complexity, &b.PersonalityMatch,
		&b.PageCount, &b.ISBN, &b.Language,
		&b.CreatedAt, &b.UpdatedAt,
		&r.genreIDs, &r.genreNames,
	}
}

func (r *bookRow) result() models.Book {
	b := r.book
	b.GenreIDs = make([]int, len(r.genreIDs))
	for i, id := range r.genreIDs {
		b.GenreIDs[i] = int(id)
	}
	b.Genres = append([]string{}, r.genreNames...)
	return b
}

// FindBooks returns up to limit books matching pred, ordered by id.
func (r *BookRepository) FindBooks(ctx context.Context, pred recommend.Predicate, limit int) ([]models.Book, error) {
	var q queryBuilder
	where, err := q.where(pred)
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		INNER JOIN authors a ON a.id = b.author_id
		WHERE %s
		ORDER BY b.id ASC
		LIMIT %s
	`, bookColumns, where, q.arg(limit))

	rows, err := r.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0, limit)
	for rows.Next() {
		var row bookRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, row.result())
	}
	return books, rows.Err()
}

// ListBooks returns a paginated list of books matching the given filters.
func (r *BookRepository) ListBooks(ctx context.Context, params models.BookListParams) (*models.BookListResponse, error) {
	var q queryBuilder
	conditions := []string{"1=1"}

	if params.Mood != "" {
		conditions = append(conditions, "b.mood = "+q.arg(string(params.Mood)))
	}
	if params.Personality != "" {
		conditions = append(conditions, "b.personality_match = "+q.arg(string(params.Personality)))
	}
	if params.Complexity != "" {
		conditions = append(conditions, "b.complexity = "+q.arg(string(params.Complexity)))
	}
	if params.Genre != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM book_genres bg INNER JOIN genres g ON g.id = bg.genre_id
			WHERE bg.book_id = b.id AND LOWER(g.name) = LOWER(%s))`, q.arg(params.Genre)))
	}
	if params.Search != "" {
		p := q.arg("%" + params.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(b.title ILIKE %s OR a.name ILIKE %s OR b.themes ILIKE %s)", p, p, p))
	}

	whereClause := strings.Join(conditions, " AND ")

	// Validate sort column to prevent SQL injection
	sortColumn := "created_at"
	switch params.SortBy {
	case "title":
		sortColumn = "title"
	case "published_date":
		sortColumn = "published_date"
	}
	orderDir := "DESC"
	if params.Order == "asc" {
		orderDir = "ASC"
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM books b INNER JOIN authors a ON a.id = b.author_id WHERE %s
	`, whereClause)
	var totalResults int
	if err := r.db.QueryRowContext(ctx, countQuery, q.args...).Scan(&totalResults); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	totalPages := 0
	if totalResults > 0 {
		totalPages = (totalResults + params.PageSize - 1) / params.PageSize
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM books b
		INNER JOIN authors a ON a.id = b.author_id
		WHERE %s
		ORDER BY b.%s %s NULLS LAST, b.id ASC
		LIMIT %s OFFSET %s
	`, bookColumns, whereClause, sortColumn, orderDir, q.arg(params.PageSize), q.arg(offset))

	rows, err := r.db.QueryContext(ctx, listQuery, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0, params.PageSize)
	for rows.Next() {
		var row bookRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, row.result())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.BookListResponse{
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		Data:         books,
	}, nil
}

// GetBook returns a book by id or ErrNotFound.
func (r *BookRepository) GetBook(ctx context.Context, id int) (*models.Book, error) {
	var row bookRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books b
		INNER JOIN authors a ON a.id = b.author_id
		WHERE b.id = $1
	`, id).Scan(row.dest()...)
	if err != nil {
		return nil, mapError(err)
	}
	book := row.result()
	return &book, nil
}

// ListGenres returns all genres ordered by name.
func (r *BookRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, COALESCE(description, '') FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := make([]models.Genre, 0)
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// ListAuthors returns all authors ordered by name.
func (r *BookRepository) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, COALESCE(bio, '') FROM authors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	authors := make([]models.Author, 0)
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// CatalogWriter is the write side of the catalog used by imports.
type CatalogWriter interface {
	UpsertGenre(ctx context.Context, g models.Genre) (int, error)
	UpsertAuthor(ctx context.Context, a models.Author) (int, error)
	UpsertBook(ctx context.Context, b *models.Book) (int, error)
	LinkBookGenre(ctx context.Context, bookID, genreID int) error
	ClearBookGenres(ctx context.Context, bookID int) error
}

// WithinTx runs fn against a CatalogWriter bound to one transaction. The
// transaction commits only when fn returns nil.
func (r *BookRepository) WithinTx(ctx context.Context, fn func(CatalogWriter) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&catalogTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

type catalogTx struct {
	tx *sql.Tx
}

// UpsertGenre inserts or updates a genre by name.
func (w *catalogTx) UpsertGenre(ctx context.Context, g models.Genre) (int, error) {
	var id int
	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO genres (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id
	`, g.Name, g.Description).Scan(&id)
	return id, err
}

// UpsertAuthor inserts or updates an author by name.
func (w *catalogTx) UpsertAuthor(ctx context.Context, a models.Author) (int, error) {
	var id int
	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO authors (name, bio)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET bio = EXCLUDED.bio
		RETURNING id
	`, a.Name, a.Bio).Scan(&id)
	return id, err
}

// UpsertBook inserts or updates a book keyed by title and author.
func (w *catalogTx) UpsertBook(ctx context.Context, b *models.Book) (int, error) {
	var id int
	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO books (title, author_id, description, cover_url, published_date,
			mood, themes, complexity, personality_match, page_count, isbn, language, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (title, author_id) DO UPDATE SET
			description = EXCLUDED.description,
			cover_url = EXCLUDED.cover_url,
			published_date = EXCLUDED.published_date,
			mood = EXCLUDED.mood,
			themes = EXCLUDED.themes,
			complexity = EXCLUDED.complexity,
			personality_match = EXCLUDED.personality_match,
			page_count = EXCLUDED.page_count,
			isbn = EXCLUDED.isbn,
			language = EXCLUDED.language,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`, b.Title, b.AuthorID, b.Description, b.CoverURL, nullableDate(b.PublishedDate),
		string(b.Mood), b.Themes, string(b.Complexity), string(b.PersonalityMatch),
		b.PageCount, b.ISBN, b.Language, time.Now()).Scan(&id)
	return id, err
}

// LinkBookGenre creates the book-genre association.
func (w *catalogTx) LinkBookGenre(ctx context.Context, bookID, genreID int) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO book_genres (book_id, genre_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, bookID, genreID)
	return err
}

// ClearBookGenres removes all genre links for a book.
func (w *catalogTx) ClearBookGenres(ctx context.Context, bookID int) error {
	_, err := w.tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, bookID)
	return err
}

func nullableDate(dateStr string) any {
	if dateStr == "" {
		return nil
	}
	return dateStr
}
