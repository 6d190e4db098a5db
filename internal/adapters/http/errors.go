package http

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/notices"
	"github.com/samirrijal/unirenta/internal/pkg/metrics"
)

// APIError is a structured error response.
type APIError struct {
	Status    int            `json:"status"`
	Code      string         `json:"code"`    // Error code: bad_request, not_found, bad_gateway, etc.
	Message   string         `json:"message"` // Human-readable message
	RequestID string         `json:"request_id,omitempty"`
	Notice    *domain.Notice `json:"notice,omitempty"` // What the client should show the user
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string, notice *domain.Notice) error {
	reqID, _ := c.Locals("requestid").(string)
	if notice != nil {
		metrics.NoticesClassified.WithLabelValues(notice.Category, string(notice.Severity)).Inc()
	}
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
		Notice:    notice,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, nil)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg, nil)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg, nil)
}

// errFromService maps a service error to a response. Backend failures carry
// the classified notice so the client can show it as is.
func errFromService(c *fiber.Ctx, deps *Dependencies, err error) error {
	ctx := c.UserContext()

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		n := notices.FromValidation(verr)
		return newError(c, fiber.StatusBadRequest, "bad_request", verr.Message, &n)
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return errBadRequest(c, err.Error())
	}
	if errors.Is(err, domain.ErrNotFound) {
		return errNotFound(c, "not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "backend did not answer in time", noticeFor(ctx, deps, err))
	}

	LoggerFromCtx(ctx).Warn("backend call failed", slog.String("error", err.Error()))

	var remote domain.RemoteError
	if errors.As(err, &remote) {
		status := remote.Payload().Status
		n := noticeFor(ctx, deps, err)
		if status >= 400 && status < 500 {
			return newError(c, status, "backend_rejected", err.Error(), n)
		}
		return newError(c, fiber.StatusBadGateway, "bad_gateway", err.Error(), n)
	}
	return newError(c, fiber.StatusBadGateway, "bad_gateway", "backend unavailable", noticeFor(ctx, deps, err))
}

func noticeFor(ctx context.Context, deps *Dependencies, err error) *domain.Notice {
	if deps.Notices == nil {
		return nil
	}
	n := deps.Notices.FromError(ctx, err)
	return &n
}
