package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// UserService owns preferences, mood history and interactions. It is also
// the ranker's UserContextProvider.
type UserService struct {
	repo     UserStore
	cache    cache
	prefsTTL time.Duration
}

func NewUserService(repo UserStore, rdb *redis.Client, prefsTTL time.Duration) *UserService {
	return &UserService{repo: repo, cache: newCache(rdb, "preferences"), prefsTTL: prefsTTL}
}

func prefsCacheKey(userID int) string {
	return fmt.Sprintf("user:pref:%d", userID)
}

// GetPreferences returns the stored preferences or nil when the user has none.
// It does not create defaults.
func (s *UserService) GetPreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	var cached models.Preferences
	if s.cache.get(ctx, prefsCacheKey(userID), &cached) {
		return &cached, nil
	}

	p, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		s.cache.set(ctx, prefsCacheKey(userID), p, s.prefsTTL)
	}
	return p, nil
}

// GetOrCreatePreferences returns the user's preferences, creating defaults on
// first access.
func (s *UserService) GetOrCreatePreferences(ctx context.Context, userID int) (*models.Preferences, error) {
	var cached models.Preferences
	if s.cache.get(ctx, prefsCacheKey(userID), &cached) {
		return &cached, nil
	}

	p, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create preferences: %w", err)
	}
	s.cache.set(ctx, prefsCacheKey(userID), p, s.prefsTTL)
	return p, nil
}

// UpdatePreferences applies a partial update.
func (s *UserService) UpdatePreferences(ctx context.Context, userID int, req models.UpdatePreferencesRequest) (*models.Preferences, error) {
	current, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create preferences: %w", err)
	}
	req.Apply(current)
	return s.save(ctx, current)
}

// TakeQuiz derives the dominant trait from quiz answers and stores it.
func (s *UserService) TakeQuiz(ctx context.Context, userID int, answers []models.Personality) (*models.PersonalityQuizResponse, error) {
	trait, err := recommend.DominantTrait(answers)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create preferences: %w", err)
	}
	current.PersonalityTrait = trait

	updated, err := s.save(ctx, current)
	if err != nil {
		return nil, err
	}
	slog.Info("personality quiz completed", "user_id", userID, "trait", trait, "answers", len(answers))
	return &models.PersonalityQuizResponse{DominantTrait: trait, Preferences: updated}, nil
}

func (s *UserService) save(ctx context.Context, p *models.Preferences) (*models.Preferences, error) {
	updated, err := s.repo.UpdatePreferences(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	s.cache.del(ctx, prefsCacheKey(p.UserID))
	return updated, nil
}

// RecordMood appends to the user's mood history.
func (s *UserService) RecordMood(ctx context.Context, userID int, mood models.Mood, intensity int) (*models.MoodEntry, error) {
	return s.repo.RecordMood(ctx, userID, mood, intensity)
}

// CreateMood records a mood from a request body; a zero intensity means
// recommend.DefaultIntensity.
func (s *UserService) CreateMood(ctx context.Context, userID int, req models.CreateMoodRequest) (*models.MoodEntry, error) {
	intensity := req.Intensity
	if intensity == 0 {
		intensity = recommend.DefaultIntensity
	}
	return s.repo.RecordMood(ctx, userID, req.Mood, intensity)
}

func (s *UserService) ListMoods(ctx context.Context, userID, limit int) ([]models.MoodEntry, error) {
	return s.repo.ListMoods(ctx, userID, clampLimit(limit))
}

func (s *UserService) GetMood(ctx context.Context, userID, moodID int) (*models.MoodEntry, error) {
	return s.repo.GetMood(ctx, userID, moodID)
}

func (s *UserService) DeleteMood(ctx context.Context, userID, moodID int) error {
	return s.repo.DeleteMood(ctx, userID, moodID)
}

// GetInteractions returns the user's interactions with the given books.
func (s *UserService) GetInteractions(ctx context.Context, userID int, bookIDs []int) ([]models.Interaction, error) {
	return s.repo.GetInteractions(ctx, userID, bookIDs)
}

func (s *UserService) CreateInteraction(ctx context.Context, userID int, req models.CreateInteractionRequest) (*models.Interaction, error) {
	return s.repo.CreateInteraction(ctx, userID, req)
}

func (s *UserService) ListInteractions(ctx context.Context, userID, limit int) ([]models.Interaction, error) {
	return s.repo.ListInteractions(ctx, userID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}
