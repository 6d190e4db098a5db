package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/mapping"
	"github.com/samirrijal/unirenta/internal/core/ports"
)

// ErrSessionClosed is returned by MapSession methods called after Close.
var ErrSessionClosed = errors.New("map session closed")

// MapSession keeps one client's map in sync: a property layer that fits the
// viewport on every render, and a university layer recomputed after the
// viewport settles. View mutations are serialised; backend calls are not,
// so a slow university response may overwrite a newer one.
type MapSession struct {
	id           string
	view         ports.MapView
	properties   *PropertyService
	universities *UniversityService
	notices      *NoticeService
	publisher    ports.EventPublisher

	ctx      context.Context
	cancel   context.CancelFunc
	debounce *mapping.Debouncer[domain.Viewport]
	wait     time.Duration
	observe  func(layer domain.LayerName, err error)

	mu         sync.Mutex
	propLayer  *mapping.Layer
	uniLayer   *mapping.Layer
	zoom       float64
	closed     bool
	lastFilter *domain.PropertyFilters
}

// SessionOption configures a MapSession.
type SessionOption func(*MapSession)

// WithDebounce overrides mapping.DefaultDebounce.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *MapSession) { s.wait = d }
}

// WithRenderObserver registers fn to be called after every layer render
// attempt with the layer name and the error, if any.
func WithRenderObserver(fn func(layer domain.LayerName, err error)) SessionOption {
	return func(s *MapSession) { s.observe = fn }
}

// NewMapSession creates a session drawing on view. The session lives until
// Close is called or ctx is cancelled.
func NewMapSession(
	ctx context.Context,
	id string,
	view ports.MapView,
	properties *PropertyService,
	universities *UniversityService,
	notices *NoticeService,
	publisher ports.EventPublisher,
	opts ...SessionOption,
) *MapSession {
	s := &MapSession{
		id:           id,
		view:         view,
		properties:   properties,
		universities: universities,
		notices:      notices,
		publisher:    publisher,
		wait:         mapping.DefaultDebounce,
		observe:      func(domain.LayerName, error) {},
	}
	for _, o := range opts {
		o(s)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.propLayer = mapping.NewLayer(domain.LayerProperties, view, mapping.WithFitBounds(mapping.DefaultFit))
	s.uniLayer = mapping.NewLayer(domain.LayerUniversities, view)
	s.debounce = mapping.NewDebouncer(s.wait, s.recomputeUniversities)
	return s
}

// ID returns the session id.
func (s *MapSession) ID() string { return s.id }

// Load fetches properties (filtered when filters is non-nil) and renders the
// property layer. The university directory is warmed in parallel so the
// first viewport settle does not wait on it.
func (s *MapSession) Load(ctx context.Context, filters *domain.PropertyFilters) error {
	var props []domain.Property

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		if filters != nil {
			props, err = s.properties.Search(ctx, *filters)
		} else {
			props, err = s.properties.List(ctx)
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		// Failures surface on the next settle instead.
		_, _ = s.universities.List(ctx)
		return nil
	})
	err := p.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	if err != nil {
		s.observe(domain.LayerProperties, err)
		s.notify(ctx, err)
		return fmt.Errorf("load properties: %w", err)
	}

	s.lastFilter = filters
	err = s.propLayer.Render(mapping.GroupByCoordinates(props))
	s.observe(domain.LayerProperties, err)
	return err
}

// Reload repeats the last Load.
func (s *MapSession) Reload(ctx context.Context) error {
	s.mu.Lock()
	filters := s.lastFilter
	s.mu.Unlock()
	return s.Load(ctx, filters)
}

// SettleViewport records the viewport the client settled on and schedules
// the university layer recomputation after the debounce period.
func (s *MapSession) SettleViewport(vp domain.Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.zoom = vp.Zoom
	s.debounce.Trigger(vp)
	return nil
}

// TrackZoom updates the zoom used for click targets without touching layers.
func (s *MapSession) TrackZoom(zoom float64) {
	s.mu.Lock()
	s.zoom = zoom
	s.mu.Unlock()
}

// Zoom returns the last known zoom level.
func (s *MapSession) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Click handles a click on a marker of either layer.
func (s *MapSession) Click(markerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	layer := s.propLayer
	if _, ok := s.uniLayer.Group(markerID); ok {
		layer = s.uniLayer
	}
	target, err := layer.Click(markerID, s.zoom)
	s.zoom = target
	return err
}

// Select handles a click on a popup entry: the view navigates to the entity
// and the event is published.
func (s *MapSession) Select(ctx context.Context, kind domain.PoIKind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: entity id is required", domain.ErrInvalidInput)
	}
	if kind != domain.KindProperty && kind != domain.KindUniversity {
		return fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
	}

	ev := domain.NavigationEvent{Kind: kind, ID: id, SessionID: s.id}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	err := s.view.Navigate(ev)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNavigation(ctx, &ev); err != nil {
			slog.WarnContext(ctx, "navigation publish failed",
				"session_id", s.id, "kind", string(kind), "id", id, "error", err)
		}
	}
	return nil
}

// Markers returns the markers currently placed by the session.
func (s *MapSession) Markers() []domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(s.propLayer.Markers(), s.uniLayer.Markers()...)
}

// Close cancels pending work. Later calls are no-ops.
func (s *MapSession) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// recomputeUniversities runs on the debounce timer goroutine.
func (s *MapSession) recomputeUniversities(vp domain.Viewport) {
	unis, err := s.universities.InView(s.ctx, vp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err != nil {
		// Previous markers stay; the next settle retries.
		s.observe(domain.LayerUniversities, err)
		s.notify(s.ctx, err)
		return
	}

	err = s.uniLayer.Render(mapping.Singletons(unis))
	s.observe(domain.LayerUniversities, err)
}

// notify must be called with mu held.
func (s *MapSession) notify(ctx context.Context, err error) {
	if s.notices == nil {
		return
	}
	n := s.notices.FromError(ctx, err)
	_ = s.view.ShowNotice(n)
}
