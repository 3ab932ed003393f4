package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"book-discovery-recommendation-service/internal/models"
)

// UserService is the per-user behavior UserHandler depends on.
type UserService interface {
	GetOrCreatePreferences(ctx context.Context, userID int) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID int, req models.UpdatePreferencesRequest) (*models.Preferences, error)
	TakeQuiz(ctx context.Context, userID int, answers []models.Personality) (*models.PersonalityQuizResponse, error)
	CreateMood(ctx context.Context, userID int, req models.CreateMoodRequest) (*models.MoodEntry, error)
	ListMoods(ctx context.Context, userID, limit int) ([]models.MoodEntry, error)
	GetMood(ctx context.Context, userID, moodID int) (*models.MoodEntry, error)
	DeleteMood(ctx context.Context, userID, moodID int) error
	CreateInteraction(ctx context.Context, userID int, req models.CreateInteractionRequest) (*models.Interaction, error)
	ListInteractions(ctx context.Context, userID, limit int) ([]models.Interaction, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetPreferences returns the user's preferences, creating defaults on first access.
func (h *UserHandler) GetPreferences(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	pref, err := h.svc.GetOrCreatePreferences(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "", "failed to get preferences")
	}
	return c.JSON(pref)
}

// UpdatePreferences applies a partial preferences update.
func (h *UserHandler) UpdatePreferences(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	pref, err := h.svc.UpdatePreferences(c.Context(), id, req)
	if err != nil {
		return serviceError(c, err, "", "failed to set preferences")
	}
	return c.JSON(pref)
}

// TakeQuiz stores the dominant trait of the submitted quiz answers.
func (h *UserHandler) TakeQuiz(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	var req models.PersonalityQuizRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	resp, err := h.svc.TakeQuiz(c.Context(), id, req.Answers)
	if err != nil {
		return serviceError(c, err, "", "failed to save quiz result")
	}
	return c.JSON(resp)
}

func (h *UserHandler) CreateMood(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	var req models.CreateMoodRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	mood, err := h.svc.CreateMood(c.Context(), id, req)
	if err != nil {
		return serviceError(c, err, "", "failed to record mood")
	}
	return c.Status(fiber.StatusCreated).JSON(mood)
}

// ListMoods returns the user's mood history, newest first.
func (h *UserHandler) ListMoods(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	moods, err := h.svc.ListMoods(c.Context(), id, fiber.Query(c, "limit", 50))
	if err != nil {
		return serviceError(c, err, "", "failed to get moods")
	}
	if moods == nil {
		moods = []models.MoodEntry{}
	}
	return c.JSON(fiber.Map{
		"user_id": id,
		"moods":   moods,
	})
}

func (h *UserHandler) GetMood(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}
	moodID, ok := positiveParam(c, "moodID", "invalid mood ID")
	if !ok {
		return nil
	}

	mood, err := h.svc.GetMood(c.Context(), id, moodID)
	if err != nil {
		return serviceError(c, err, "mood not found", "failed to get mood")
	}
	return c.JSON(mood)
}

func (h *UserHandler) DeleteMood(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}
	moodID, ok := positiveParam(c, "moodID", "invalid mood ID")
	if !ok {
		return nil
	}

	if err := h.svc.DeleteMood(c.Context(), id, moodID); err != nil {
		return serviceError(c, err, "mood not found", "failed to delete mood")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateInteraction records a user interaction with a book.
func (h *UserHandler) CreateInteraction(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	var req models.CreateInteractionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return bindError(c, err)
	}

	inter, err := h.svc.CreateInteraction(c.Context(), id, req)
	if err != nil {
		return serviceError(c, err, "", "failed to record interaction")
	}
	return c.Status(fiber.StatusCreated).JSON(inter)
}

// ListInteractions returns the user's most recent interactions.
func (h *UserHandler) ListInteractions(c fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return nil
	}

	interactions, err := h.svc.ListInteractions(c.Context(), id, fiber.Query(c, "limit", 50))
	if err != nil {
		return serviceError(c, err, "", "failed to get interactions")
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}
	return c.JSON(fiber.Map{
		"user_id":      id,
		"interactions": interactions,
	})
}
