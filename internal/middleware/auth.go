package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// AuthTokenKey is the Locals key holding the caller's bearer token.
const AuthTokenKey = "auth_token"

var publicPrefixes = []string{"/health", "/metrics", "/swagger", "/api/v1/health"}

// AuthMiddleware provides mock Bearer token authentication.
// Any non-empty Bearer token is accepted. Health, metrics and swagger
// paths bypass authentication.
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid Authorization header format, expected 'Bearer <token>'",
			})
		}
		if strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "empty bearer token",
			})
		}

		c.Locals(AuthTokenKey, token)
		return c.Next()
	}
}
