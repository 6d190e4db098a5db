package ports

import (
	"context"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishNavigation(ctx context.Context, ev *domain.NavigationEvent) error
	PublishNotice(ctx context.Context, notice *domain.Notice) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// MapView is the map surface a session draws on. Implementations forward
// each call to the browser; they must be safe to call from one goroutine at
// a time.
type MapView interface {
	AddMarker(m domain.Marker) error
	RemoveMarker(id string) error
	FitBounds(b domain.Bounds, opts domain.FitOptions) error
	EaseTo(center domain.GeoPoint, zoom float64) error
	TogglePopup(id string) error
	ShowNotice(n domain.Notice) error
	Navigate(ev domain.NavigationEvent) error
}

// NoticeBroadcaster delivers a notice to every open map session.
type NoticeBroadcaster interface {
	PublishBroadcast(ctx context.Context, notice *domain.Notice) error
}
