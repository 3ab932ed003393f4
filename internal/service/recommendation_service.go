package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/metrics"
	"book-discovery-recommendation-service/internal/models"
	"book-discovery-recommendation-service/internal/recommend"
)

// RecommendationService runs suggestions through the ranker and serves the
// stored recommendations.
type RecommendationService struct {
	ranker  *recommend.Ranker
	repo    RecommendationStore
	cache   cache
	listTTL time.Duration
}

func NewRecommendationService(ranker *recommend.Ranker, repo RecommendationStore, rdb *redis.Client, listTTL time.Duration) *RecommendationService {
	return &RecommendationService{
		ranker:  ranker,
		repo:    repo,
		cache:   newCache(rdb, "recommendations"),
		listTTL: listTTL,
	}
}

func recommendationsCacheKey(userID int, mood models.Mood) string {
	if mood == "" {
		mood = "all"
	}
	return fmt.Sprintf("recommendations:%d:%s", userID, mood)
}

// Suggest records the mood and recomputes the user's recommendations for it.
func (s *RecommendationService) Suggest(ctx context.Context, userID int, req models.SuggestRequest) (*models.RecommendationListResponse, error) {
	start := time.Now()

	recs, err := s.rank(ctx, userID, req)
	if err != nil {
		outcome := "error"
		if recommend.IsValidation(err) {
			outcome = "invalid"
		}
		metrics.RecordSuggestion(string(req.Mood), outcome, 0, time.Since(start))
		return nil, err
	}
	metrics.RecordSuggestion(string(req.Mood), "ok", len(recs), time.Since(start))

	s.invalidate(ctx, userID)

	slog.Info("recommendations generated",
		"user_id", userID,
		"mood", req.Mood,
		"count", len(recs),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &models.RecommendationListResponse{
		UserID:          userID,
		Mood:            req.Mood,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *RecommendationService) rank(ctx context.Context, userID int, req models.SuggestRequest) ([]models.Recommendation, error) {
	intensity := 0
	if req.Intensity != nil {
		if *req.Intensity < 1 || *req.Intensity > 10 {
			return nil, &recommend.ValidationError{Field: "intensity", Err: recommend.ErrIntensityRange}
		}
		intensity = *req.Intensity
	}
	return s.ranker.RankAndPersist(ctx, userID, req.Mood, intensity)
}

// List returns the stored recommendations, for one mood when mood is set.
func (s *RecommendationService) List(ctx context.Context, userID int, mood models.Mood) (*models.RecommendationListResponse, error) {
	if mood != "" && !mood.Valid() {
		return nil, &recommend.ValidationError{Field: "mood", Err: fmt.Errorf("%w: %q", recommend.ErrUnknownMood, mood)}
	}

	cacheKey := recommendationsCacheKey(userID, mood)
	var cached models.RecommendationListResponse
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	recs, err := s.repo.ListRecommendations(ctx, userID, mood)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	resp := &models.RecommendationListResponse{
		UserID:          userID,
		Mood:            mood,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	s.cache.set(ctx, cacheKey, resp, s.listTTL)
	return resp, nil
}

// MarkRead sets the read flag on one of the user's recommendations.
func (s *RecommendationService) MarkRead(ctx context.Context, userID, recID int, isRead bool) (*models.Recommendation, error) {
	rec, err := s.repo.SetRead(ctx, userID, recID, isRead)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return rec, nil
}

func (s *RecommendationService) invalidate(ctx context.Context, userID int) {
	s.cache.delPattern(ctx, fmt.Sprintf("recommendations:%d:*", userID))
}
