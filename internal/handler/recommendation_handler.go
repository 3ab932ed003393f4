package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"book-discovery-recommendation-service/internal/models"
)

// RecommendationService is the suggestion behavior RecommendationHandler depends on.
type RecommendationService interface {
	Suggest(ctx context.Context, userID int, req models.SuggestRequest) (*models.RecommendationListResponse, error)
	List(ctx context.Context, userID int, mood models.Mood) (*models.RecommendationListResponse, error)
	MarkRead(ctx context.Context, userID, recID int, isRead bool) (*models.Recommendation, error)
}

type RecommendationHandler struct {
	svc RecommendationService
}

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Suggest godoc
// POST /api/v1/users/:id/suggest
func (h *RecommendationHandler) Suggest(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	var req models.SuggestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	resp, err := h.svc.Suggest(c.Context(), id, req)
	if err != nil {
		return serviceError(c, err, "", "failed to generate recommendations")
	}
	return c.JSON(resp)
}

// ListRecommendations godoc
// GET /api/v1/users/:id/recommendations?mood=
func (h *RecommendationHandler) ListRecommendations(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	resp, err := h.svc.List(c.Context(), id, models.Mood(c.Query("mood")))
	if err != nil {
		return serviceError(c, err, "", "failed to fetch recommendations")
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []models.Recommendation{}
	}
	return c.JSON(resp)
}

// MarkRead godoc
// PATCH /api/v1/users/:id/recommendations/:recID
func (h *RecommendationHandler) MarkRead(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}
	recID, ok := positiveParam(c, "recID", "invalid recommendation ID")
	if !ok {
		return nil
	}

	var req models.SetReadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}
	if req.IsRead == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "is_read is required"})
	}

	rec, err := h.svc.MarkRead(c.Context(), id, recID, *req.IsRead)
	if err != nil {
		return serviceError(c, err, "recommendation not found", "failed to update recommendation")
	}
	return c.JSON(rec)
}
