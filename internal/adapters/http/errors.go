package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

const upstreamUnavailableMsg = "trip search is temporarily unavailable, please try again later"

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error. The cause is logged, never rendered.
func errInternal(c *fiber.Ctx, cause error) error {
	logging.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", cause)
	return newError(c, fiber.StatusInternalServerError, "internal_error", "internal server error")
}

// errUpstream returns a 502 error with a fixed message.
func errUpstream(c *fiber.Ctx) error {
	return newError(c, fiber.StatusBadGateway, "upstream_unavailable", upstreamUnavailableMsg)
}

// writeDomainError maps a domain error onto an HTTP error response.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCriteria),
		errors.Is(err, domain.ErrInvalidTrip),
		errors.Is(err, domain.ErrMissingSession):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "saved trip not found")
	case errors.Is(err, domain.ErrSearchFailed):
		return errUpstream(c)
	default:
		return errInternal(c, err)
	}
}

// ErrorHandler is the fiber.Config ErrorHandler: it renders errors that
// escape handlers (fiber errors, timeouts, recovered panics) as APIError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "error"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestTimeout:
			code = "timeout"
		case fiber.StatusUpgradeRequired:
			code = "upgrade_required"
		case fiber.StatusTooManyRequests:
			code = "rate_limited"
		case fiber.StatusBadRequest:
			code = "bad_request"
		}
		if fe.Code >= fiber.StatusInternalServerError {
			return errInternal(c, err)
		}
		return newError(c, fe.Code, code, fe.Message)
	}
	return writeDomainError(c, err)
}
