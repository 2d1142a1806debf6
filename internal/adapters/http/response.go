package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const successMessage = "Operation successful"

// Envelope wraps every successful JSON response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    Meta   `json:"meta"`
}

type Meta struct {
	RequestID  string      `json:"request_id,omitempty"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals("requestid").(string)
	return rid
}

func respond(c *fiber.Ctx, status int, data any) error {
	return respondWithMeta(c, status, data, nil)
}

func respondWithMeta(c *fiber.Ctx, status int, data any, pg *Pagination) error {
	return c.Status(status).JSON(Envelope{
		Status:  status,
		Message: successMessage,
		Data:    data,
		Meta: Meta{
			RequestID:  requestID(c),
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			Pagination: pg,
		},
	})
}
