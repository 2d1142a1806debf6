package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case strings.HasPrefix(path, "/v1/health") || path == "/v1/ready":
			ttl = "no-store"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasSuffix(path, "/trips/search"):
			ttl = "public, max-age=60" // matches the result cache TTL

		case strings.HasPrefix(path, "/v1/saved-trips"):
			ttl = "private, no-store" // session scoped

		case path == "/docs" || path == "/docs/openapi.yaml":
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
