package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"book-discovery-recommendation-service/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const preferenceColumns = `
	p.id, p.user_id, p.preferred_complexity, p.personality_trait,
	p.prefer_fiction, p.prefer_series, p.prefer_recent_books,
	p.created_at, p.updated_at,
	ARRAY(SELECT f.genre_id FROM user_favorite_genres f WHERE f.user_id = p.user_id ORDER BY f.genre_id),
	ARRAY(SELECT g.name FROM user_favorite_genres f INNER JOIN genres g ON g.id = f.genre_id
		WHERE f.user_id = p.user_id ORDER BY f.genre_id)`

// GetPreferences returns the user's preferences, or nil when none exist.
func (r *UserRepository) GetPreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	var (
		p     models.Preferences
		ids   pq.Int64Array
		names pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT `+preferenceColumns+`
		FROM user_preferences p
		WHERE p.user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.PreferredComplexity, &p.PersonalityTrait,
		&p.PreferFiction, &p.PreferSeries, &p.PreferRecentBooks,
		&p.CreatedAt, &p.UpdatedAt, &ids, &names,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}

	p.FavoriteGenreIDs = make([]int, len(ids))
	for i, id := range ids {
		p.FavoriteGenreIDs[i] = int(id)
	}
	p.FavoriteGenreNames = append([]string{}, names...)
	return &p, nil
}

// GetOrCreatePreferences returns the user's preferences, creating the
// defaults on first access.
func (r *UserRepository) GetOrCreatePreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	d := models.DefaultPreferences(userID)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, preferred_complexity, personality_trait,
			prefer_fiction, prefer_series, prefer_recent_books)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, string(d.PreferredComplexity), string(d.PersonalityTrait),
		d.PreferFiction, d.PreferSeries, d.PreferRecentBooks)
	if err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}

	p, err := r.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("preferences for user %d vanished after create", userID)
	}
	return p, nil
}

// UpdatePreferences writes p and replaces the favorite genre set in one
// transaction.
func (r *UserRepository) UpdatePreferences(ctx context.Context, p *models.Preferences) (*models.Preferences, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, preferred_complexity, personality_trait,
			prefer_fiction, prefer_series, prefer_recent_books, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_complexity = EXCLUDED.preferred_complexity,
			personality_trait = EXCLUDED.personality_trait,
			prefer_fiction = EXCLUDED.prefer_fiction,
			prefer_series = EXCLUDED.prefer_series,
			prefer_recent_books = EXCLUDED.prefer_recent_books,
			updated_at = NOW()
	`, p.UserID, string(p.PreferredComplexity), string(p.PersonalityTrait),
		p.PreferFiction, p.PreferSeries, p.PreferRecentBooks)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_favorite_genres WHERE user_id = $1`, p.UserID); err != nil {
		return nil, fmt.Errorf("clear favorite genres: %w", err)
	}
	if len(p.FavoriteGenreIDs) > 0 {
		ids := make([]int64, len(p.FavoriteGenreIDs))
		for i, id := range p.FavoriteGenreIDs {
			ids[i] = int64(id)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_favorite_genres (user_id, genre_id)
			SELECT $1, unnest($2::int[])
			ON CONFLICT DO NOTHING
		`, p.UserID, pq.Array(ids))
		if err != nil {
			return nil, fmt.Errorf("insert favorite genres: %w", mapError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit preferences: %w", err)
	}
	return r.GetPreferences(ctx, p.UserID)
}

// RecordMood appends a mood observation.
func (r *UserRepository) RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error) {
	var m models.MoodEntry
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_moods (user_id, mood, intensity)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, mood, intensity, created_at
	`, userID, string(mood), intensity).Scan(&m.ID, &m.UserID, &m.Mood, &m.Intensity, &m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert mood: %w", err)
	}
	return &m, nil
}

// ListMoods returns the user's most recent moods, newest first.
func (r *UserRepository) ListMoods(ctx context.Context, userID, limit int) ([]models.MoodEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mood, intensity, created_at
		FROM user_moods
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query moods: %w", err)
	}
	defer rows.Close()

	moods := make([]models.MoodEntry, 0)
	for rows.Next() {
		var m models.MoodEntry
		if err := rows.Scan(&m.ID, &m.UserID, &m.Mood, &m.Intensity, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// GetMood returns one of the user's moods or ErrNotFound.
func (r *UserRepository) GetMood(ctx context.Context, userID, moodID int) (*models.MoodEntry, error) {
	var m models.MoodEntry
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, mood, intensity, created_at
		FROM user_moods
		WHERE id = $1 AND user_id = $2
	`, moodID, userID).Scan(&m.ID, &m.UserID, &m.Mood, &m.Intensity, &m.Timestamp)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// DeleteMood removes one of the user's moods or returns ErrNotFound.
func (r *UserRepository) DeleteMood(ctx context.Context, userID, moodID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_moods WHERE id = $1 AND user_id = $2`, moodID, userID)
	if err != nil {
		return fmt.Errorf("delete mood: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mood: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateInteraction records a user interaction. An unknown book yields
// ErrInvalidReference.
func (r *UserRepository) CreateInteraction(ctx context.Context, userID int, req models.CreateInteractionRequest) (*models.Interaction, error) {
	var (
		in     models.Interaction
		rating sql.NullInt64
	)
	var ratingArg any
	if req.Rating != nil {
		ratingArg = *req.Rating
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_book_interactions (user_id, book_id, interaction_type, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, book_id, interaction_type, rating, created_at
	`, userID, req.BookID, string(req.InteractionType), ratingArg).Scan(
		&in.ID, &in.UserID, &in.BookID, &in.Type, &rating, &in.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", mapError(err))
	}
	if rating.Valid {
		v := int(rating.Int64)
		in.Rating = &v
	}
	return &in, nil
}

// GetInteractions returns the user's interactions with any of bookIDs.
func (r *UserRepository) GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error) {
	if len(bookIDs) == 0 {
		return []models.Interaction{}, nil
	}
	ids := make([]int64, len(bookIDs))
	for i, id := range bookIDs {
		ids[i] = int64(id)
	}
	return r.queryInteractions(ctx, `
		SELECT i.id, i.user_id, i.book_id, b.title, i.interaction_type, i.rating, i.created_at
		FROM user_book_interactions i
		INNER JOIN books b ON b.id = i.book_id
		WHERE i.user_id = $1 AND i.book_id = ANY($2)
		ORDER BY i.created_at DESC, i.id DESC
	`, userID, pq.Array(ids))
}

// ListInteractions returns the user's most recent interactions.
func (r *UserRepository) ListInteractions(ctx context.Context, userID, limit int) ([]models.Interaction, error) {
	return r.queryInteractions(ctx, `
		SELECT i.id, i.user_id, i.book_id, b.title, i.interaction_type, i.rating, i.created_at
		FROM user_book_interactions i
		INNER JOIN books b ON b.id = i.book_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2
	`, userID, limit)
}

func (r *UserRepository) queryInteractions(ctx context.Context, query string, args ...any) ([]models.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		var (
			in     models.Interaction
			rating sql.NullInt64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.BookID, &in.BookTitle, &in.Type, &rating, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			in.Rating = &v
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}
