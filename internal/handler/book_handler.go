package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"book-discovery-recommendation-service/internal/models"
)

// CatalogService is the catalog behavior BookHandler depends on.
type CatalogService interface {
	ListBooks(ctx context.Context, params models.BookListParams) (*models.BookListResponse, error)
	GetBook(ctx context.Context, id int) (*models.Book, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	ImportCatalog(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	svc CatalogService
}

func NewBookHandler(svc CatalogService) *BookHandler {
	return &BookHandler{svc: svc}
}

// ListBooks returns a paginated list of books.
// @Summary List books
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Param mood query string false "Suitable mood"
// @Param personality query string false "Personality match"
// @Param complexity query string false "Complexity"
// @Param genre query string false "Genre name"
// @Param search query string false "Search title, author and themes"
// @Param sort_by query string false "Sort field" Enums(title,published_date,created_at) default(created_at)
// @Param order query string false "Sort order" Enums(asc,desc) default(desc)
// @Success 200 {object} models.BookListResponse
// @Failure 500 {object} ErrorResponse
// @Router /books [get]
func (h *BookHandler) ListBooks(c fiber.Ctx) error {
	params := models.BookListParams{
		Page:        fiber.Query(c, "page", 1),
		PageSize:    fiber.Query(c, "page_size", 20),
		Mood:        models.Mood(c.Query("mood")),
		Personality: models.Personality(c.Query("personality")),
		Complexity:  models.Complexity(c.Query("complexity")),
		Genre:       c.Query("genre"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sort_by", "created_at"),
		Order:       c.Query("order", "desc"),
	}

	result, err := h.svc.ListBooks(c.Context(), params)
	if err != nil {
		return serviceError(c, err, "", "failed to retrieve books")
	}
	return c.JSON(result)
}

// GetBook returns a single book.
// @Summary Get book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.Book
// @Failure 404 {object} ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c fiber.Ctx) error {
	id, ok := positiveParam(c, "id", "invalid book ID")
	if !ok {
		return nil
	}

	book, err := h.svc.GetBook(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "book not found", "failed to retrieve book")
	}
	return c.JSON(book)
}

func (h *BookHandler) ListGenres(c fiber.Ctx) error {
	genres, err := h.svc.ListGenres(c.Context())
	if err != nil {
		return serviceError(c, err, "", "failed to retrieve genres")
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	return c.JSON(fiber.Map{"genres": genres})
}

func (h *BookHandler) ListAuthors(c fiber.Ctx) error {
	authors, err := h.svc.ListAuthors(c.Context())
	if err != nil {
		return serviceError(c, err, "", "failed to retrieve authors")
	}
	if authors == nil {
		authors = []models.Author{}
	}
	return c.JSON(fiber.Map{"authors": authors})
}

// ImportCatalog upserts the catalog file sent as the request body.
// @Summary Import catalog
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /admin/import [post]
func (h *BookHandler) ImportCatalog(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "catalog body is required"})
	}

	result, err := h.svc.ImportCatalog(c.Context(), bytes.NewReader(c.Body()))
	if err != nil {
		return serviceError(c, err, "", "catalog import failed")
	}
	return c.JSON(fiber.Map{
		"message": "import completed",
		"result":  result,
	})
}
