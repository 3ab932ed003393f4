package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"book-discovery-recommendation-service/internal/metrics"
)

// Metrics records request counts and latency by route pattern.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
