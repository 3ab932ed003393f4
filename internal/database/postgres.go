package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"book-discovery-recommendation-service/internal/config"
)

func NewPostgres(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS genres (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL,
		description TEXT DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id SERIAL PRIMARY KEY,
		name VARCHAR(200) UNIQUE NOT NULL,
		bio TEXT DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
		description TEXT DEFAULT '',
		cover_url VARCHAR(500) DEFAULT '',
		published_date DATE,
		mood VARCHAR(20) NOT NULL,
		themes TEXT DEFAULT '',
		complexity VARCHAR(20) NOT NULL DEFAULT 'medium',
		personality_match VARCHAR(20) NOT NULL,
		page_count INTEGER DEFAULT 0,
		isbn VARCHAR(13) DEFAULT '',
		language VARCHAR(50) DEFAULT 'English',
		created_at TIMESTAMP DEFAULT NOW(),
		updated_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(title, author_id)
	)`,
	`CREATE TABLE IF NOT EXISTS book_genres (
		book_id INTEGER REFERENCES books(id) ON DELETE CASCADE,
		genre_id INTEGER REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (book_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_moods (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		mood VARCHAR(20) NOT NULL,
		intensity INTEGER NOT NULL DEFAULT 5 CHECK (intensity BETWEEN 1 AND 10),
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		preferred_complexity VARCHAR(20) NOT NULL DEFAULT 'medium',
		personality_trait VARCHAR(20) NOT NULL DEFAULT 'creative',
		prefer_fiction BOOLEAN NOT NULL DEFAULT TRUE,
		prefer_series BOOLEAN NOT NULL DEFAULT FALSE,
		prefer_recent_books BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT NOW(),
		updated_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_favorite_genres (
		user_id INTEGER NOT NULL,
		genre_id INTEGER REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_book_interactions (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		interaction_type VARCHAR(20) NOT NULL,
		rating INTEGER CHECK (rating BETWEEN 1 AND 5),
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		mood VARCHAR(20) NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT NOW(),
		updated_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(user_id, book_id, mood)
	)`,
	// Indexes for candidate selection and per-user lookups
	`CREATE INDEX IF NOT EXISTS idx_books_mood ON books(mood)`,
	`CREATE INDEX IF NOT EXISTS idx_books_personality_match ON books(personality_match)`,
	`CREATE INDEX IF NOT EXISTS idx_books_complexity ON books(complexity)`,
	`CREATE INDEX IF NOT EXISTS idx_book_genres_genre_id ON book_genres(genre_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_moods_user_id ON user_moods(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user_book ON user_book_interactions(user_id, book_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user_score ON recommendations(user_id, score DESC)`,
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed", "statements", len(migrations))
	return nil
}
