package repository

import (
	"context"
	"database/sql"
	"fmt"

	"book-discovery-recommendation-service/internal/models"
)

type RecommendationRepository struct {
	db *sql.DB
}

func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

const recommendationColumns = `id, user_id, book_id, mood, score, reason, is_read, created_at, updated_at`

// UpsertRecommendation stores a recommendation, overwriting score and reason
// of the existing (user, book, mood) row and resetting is_read.
func (r *RecommendationRepository) UpsertRecommendation(ctx context.Context, rec models.Recommendation) (*models.Recommendation, error) {
	var out models.Recommendation
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO recommendations (user_id, book_id, mood, score, reason, is_read, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		ON CONFLICT (user_id, book_id, mood) DO UPDATE SET
			score = EXCLUDED.score,
			reason = EXCLUDED.reason,
			is_read = FALSE,
			updated_at = NOW()
		RETURNING `+recommendationColumns,
		rec.UserID, rec.BookID, string(rec.Mood), rec.Score, rec.Reason,
	).Scan(
		&out.ID, &out.UserID, &out.BookID, &out.Mood, &out.Score,
		&out.Reason, &out.IsRead, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert recommendation: %w", mapError(err))
	}
	return &out, nil
}

// ListRecommendations returns the user's stored recommendations with book
// details, optionally for one mood, by score descending then book id.
func (r *RecommendationRepository) ListRecommendations(ctx context.Context, userID int, mood models.Mood) ([]models.Recommendation, error) {
	var q queryBuilder
	where := "r.user_id = " + q.arg(userID)
	if mood != "" {
		where += " AND r.mood = " + q.arg(string(mood))
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT r.id, r.user_id, r.book_id, r.mood, r.score, r.reason, r.is_read,
			r.created_at, r.updated_at, %s
		FROM recommendations r
		INNER JOIN books b ON b.id = r.book_id
		INNER JOIN authors a ON a.id = b.author_id
		WHERE %s
		ORDER BY r.score DESC, r.book_id ASC, r.mood ASC
	`, bookColumns, where), q.args...)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]models.Recommendation, 0)
	for rows.Next() {
		var (
			rec models.Recommendation
			row bookRow
		)
		dest := append([]any{
			&rec.ID, &rec.UserID, &rec.BookID, &rec.Mood, &rec.Score,
			&rec.Reason, &rec.IsRead, &rec.CreatedAt, &rec.UpdatedAt,
		}, row.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		book := row.result()
		rec.Book = &book
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetRead flags one of the user's recommendations read or unread.
func (r *RecommendationRepository) SetRead(ctx context.Context, userID, recID int, isRead bool) (*models.Recommendation, error) {
	var out models.Recommendation
	err := r.db.QueryRowContext(ctx, `
		UPDATE recommendations SET is_read = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING `+recommendationColumns,
		isRead, recID, userID,
	).Scan(
		&out.ID, &out.UserID, &out.BookID, &out.Mood, &out.Score,
		&out.Reason, &out.IsRead, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}
