package usecases

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/notices"
	"github.com/samirrijal/unirenta/internal/core/ports"
)

// NoticeService turns failures into user-facing notices and announces them
// on the event bus.
type NoticeService struct {
	publisher ports.EventPublisher
}

// NewNoticeService creates a new NoticeService. publisher may be nil.
func NewNoticeService(publisher ports.EventPublisher) *NoticeService {
	return &NoticeService{publisher: publisher}
}

// Classify maps a decoded backend payload to a notice.
func (s *NoticeService) Classify(ctx context.Context, p domain.ErrorPayload) domain.Notice {
	n := notices.Classify(p)
	s.publish(ctx, &n)
	return n
}

// FromError builds the notice for any error returned by a service call.
// Input rejected locally becomes a validation notice; other errors that
// never reached the backend classify as connectivity problems.
func (s *NoticeService) FromError(ctx context.Context, err error) domain.Notice {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) && errors.Is(err, domain.ErrInvalidInput) {
		verr = &domain.ValidationError{Title: "Datos inválidos", Message: invalidInputReason(err)}
	}
	if verr != nil {
		n := notices.FromValidation(verr)
		s.publish(ctx, &n)
		return n
	}

	var remote domain.RemoteError
	if errors.As(err, &remote) {
		return s.Classify(ctx, remote.Payload())
	}
	return s.Classify(ctx, domain.ErrorPayload{})
}

func (s *NoticeService) publish(ctx context.Context, n *domain.Notice) {
	if s.publisher == nil {
		return
	}
	// Delivery is best effort; the caller already has the notice.
	if err := s.publisher.PublishNotice(ctx, n); err != nil {
		slog.WarnContext(ctx, "notice publish failed",
			"category", n.Category, "severity", string(n.Severity), "error", err)
	}
}

// invalidInputReason drops the wrapping prefixes so "load: invalid input:
// precioMin is greater than precioMax" reads as the reason alone.
func invalidInputReason(err error) string {
	msg := err.Error()
	marker := domain.ErrInvalidInput.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
