package http

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
)

// etagSourceKey names the Locals slot a handler fills with the stable part
// of its response. Envelopes carry a request ID and timestamp, so hashing
// the whole body would never match.
const etagSourceKey = "etag_source"

// ETagMiddleware computes a weak ETag and returns 304 Not Modified if the
// client already has it. Only responses that set etagSourceKey take part.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}

		src, ok := c.Locals(etagSourceKey).([]byte)
		if !ok || len(src) == 0 {
			return nil
		}

		h := sha256.Sum256(src)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}
