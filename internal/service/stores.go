package service

import (
	"context"

	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
	"book-discovery-recommendation-service/internal/repository"
)

// BookStore is the catalog persistence used by CatalogService.
type BookStore interface {
	recommend.CatalogProvider
	ListBooks(ctx context.Context, params models.BookListParams) (*models.BookListResponse, error)
	GetBook(ctx context.Context, id int) (*models.Book, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	WithinTx(ctx context.Context, fn func(repository.CatalogWriter) error) error
}

// UserStore is the per-user persistence used by UserService.
type UserStore interface {
	GetPreferences(ctx context.Context, userID int) (*models.Preferences, error)
	GetOrCreatePreferences(ctx context.Context, userID int) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, p *models.Preferences) (*models.Preferences, error)
	RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error)
	ListMoods(ctx context.Context, userID, limit int) ([]models.MoodEntry, error)
	GetMood(ctx context.Context, userID, moodID int) (*models.MoodEntry, error)
	DeleteMood(ctx context.Context, userID, moodID int) error
	CreateInteraction(ctx context.Context, userID int, req models.CreateInteractionRequest) (*models.Interaction, error)
	GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error)
	ListInteractions(ctx context.Context, userID, limit int) ([]models.Interaction, error)
}

// RecommendationStore extends the ranker's store with the read side.
type RecommendationStore interface {
	recommend.RecommendationStore
	ListRecommendations(ctx context.Context, userID int, mood models.Mood) ([]models.Recommendation, error)
	SetRead(ctx context.Context, userID, recID int, isRead bool) (*models.Recommendation, error)
}
