package http

import (
	"context"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/ports"
	"github.com/samirrijal/unirenta/internal/core/usecases"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnStatus reports broker connectivity.
type ConnStatus interface {
	Connected() bool
}

// BroadcastFeed delivers broadcast notices to a session until cancelled.
type BroadcastFeed interface {
	SubscribeBroadcasts(handler func(n domain.Notice)) (cancel func(), err error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Properties   *usecases.PropertyService
	Universities *usecases.UniversityService
	Map          *usecases.MapService
	Notices      *usecases.NoticeService
	Publisher    ports.EventPublisher
	Broadcaster  ports.NoticeBroadcaster
	Broadcasts   BroadcastFeed
	Cache        Pinger
	NATS         ConnStatus

	// SessionOptions are applied to every WebSocket map session.
	SessionOptions []usecases.SessionOption
}
