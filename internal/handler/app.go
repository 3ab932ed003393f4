package handler

import (
	"errors"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"book-discovery-recommendation-service/internal/recommend"
	"book-discovery-recommendation-service/internal/repository"
	"book-discovery-recommendation-service/internal/validation"
)

const serviceName = "book-discovery-recommendation-service"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// NewApp creates the Fiber app with the service's JSON codec, request
// validator and error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:         "Book Discovery Service",
		ServerHeader:    "Book-Discovery",
		JSONEncoder:     json.Marshal,
		JSONDecoder:     json.Unmarshal,
		StructValidator: validation.StructValidator{},
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("unhandled error", "error", err, "status", code, "path", c.Path())
			}
			return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
		},
	})
}

// Handlers groups the route handlers registered by Register.
type Handlers struct {
	Books           *BookHandler
	Users           *UserHandler
	Recommendations *RecommendationHandler
}

// Register mounts the API routes on router.
func Register(router fiber.Router, h Handlers) {
	router.Get("/health", Health)

	api := router.Group("/api/v1")
	api.Get("/health", Health)

	api.Get("/books", h.Books.ListBooks)
	api.Get("/books/:id", h.Books.GetBook)
	api.Get("/genres", h.Books.ListGenres)
	api.Get("/authors", h.Books.ListAuthors)
	api.Post("/admin/import", h.Books.ImportCatalog)

	users := api.Group("/users/:id")
	users.Post("/suggest", h.Recommendations.Suggest)
	users.Get("/recommendations", h.Recommendations.ListRecommendations)
	users.Patch("/recommendations/:recID", h.Recommendations.MarkRead)

	users.Get("/preferences", h.Users.GetPreferences)
	users.Put("/preferences", h.Users.UpdatePreferences)
	users.Post("/personality", h.Users.TakeQuiz)

	users.Post("/moods", h.Users.CreateMood)
	users.Get("/moods", h.Users.ListMoods)
	users.Get("/moods/:moodID", h.Users.GetMood)
	users.Delete("/moods/:moodID", h.Users.DeleteMood)

	users.Post("/interactions", h.Users.CreateInteraction)
	users.Get("/interactions", h.Users.ListInteractions)
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": serviceName,
	})
}

// userID reads the :id path parameter. It returns false after writing a 400
// when the id is not a positive integer.
func userID(c fiber.Ctx) (int, bool) {
	return positiveParam(c, "id", "invalid user ID")
}

func positiveParam(c fiber.Ctx, name, message string) (int, bool) {
	id := fiber.Params[int](c, name)
	if id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: message})
		return 0, false
	}
	return id, true
}

// bindError answers a request body that failed to decode or validate.
func bindError(c fiber.Ctx, err error) error {
	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ve.Error(), Fields: ve.Fields})
	}
	slog.Debug("invalid request body", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
}

// serviceError maps a service error onto a status code. Unexpected errors
// are logged and answered with fallback.
func serviceError(c fiber.Ctx, err error, notFound, fallback string) error {
	var rve *validation.RequestValidationError
	switch {
	case recommend.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	case errors.As(err, &rve):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: rve.Error(), Fields: rve.Fields})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound})
	case errors.Is(err, repository.ErrInvalidReference):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "referenced book or genre does not exist"})
	}
	slog.Error(fallback, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: fallback})
}
