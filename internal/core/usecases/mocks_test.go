package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// --- Mock PropertyRepository ---

type mockPropertyRepo struct {
	listFn     func(ctx context.Context) ([]domain.Property, error)
	filterFn   func(ctx context.Context, f domain.PropertyFilters) ([]domain.Property, error)
	getByIDFn  func(ctx context.Context, id int64) (*domain.Property, error)
	registerFn func(ctx context.Context, reg *domain.PropertyRegistration) (*domain.Property, error)
}

func (m *mockPropertyRepo) List(ctx context.Context) ([]domain.Property, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPropertyRepo) Filter(ctx context.Context, f domain.PropertyFilters) ([]domain.Property, error) {
	if m.filterFn != nil {
		return m.filterFn(ctx, f)
	}
	return nil, nil
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPropertyRepo) Register(ctx context.Context, reg *domain.PropertyRegistration) (*domain.Property, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, reg)
	}
	return &domain.Property{ID: 1, Name: reg.Name}, nil
}

// --- Mock UniversityRepository ---

type mockUniversityRepo struct {
	mu     sync.Mutex
	calls  int
	listFn func(ctx context.Context) ([]domain.University, error)
}

func (m *mockUniversityRepo) List(ctx context.Context) ([]domain.University, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUniversityRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

var errCacheMiss = errors.New("cache miss")

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu          sync.Mutex
	navigations []domain.NavigationEvent
	notices     []domain.Notice
	err         error
}

func (m *mockPublisher) PublishNavigation(ctx context.Context, ev *domain.NavigationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.navigations = append(m.navigations, *ev)
	return nil
}

func (m *mockPublisher) PublishNotice(ctx context.Context, n *domain.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.notices = append(m.notices, *n)
	return nil
}

func (m *mockPublisher) Notices() []domain.Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notice(nil), m.notices...)
}

// --- Fake MapView ---

type fakeView struct {
	mu      sync.Mutex
	live    map[string]domain.Marker
	added   []domain.Marker
	removed []string
	fits    []domain.Bounds
	eases   []float64
	toggles []string
	notices []domain.Notice
	navs    []domain.NavigationEvent
}

func newFakeView() *fakeView {
	return &fakeView{live: make(map[string]domain.Marker)}
}

func (v *fakeView) AddMarker(m domain.Marker) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.live[m.ID] = m
	v.added = append(v.added, m)
	return nil
}

func (v *fakeView) RemoveMarker(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.live, id)
	v.removed = append(v.removed, id)
	return nil
}

func (v *fakeView) FitBounds(b domain.Bounds, opts domain.FitOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fits = append(v.fits, b)
	return nil
}

func (v *fakeView) EaseTo(center domain.GeoPoint, zoom float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.eases = append(v.eases, zoom)
	return nil
}

func (v *fakeView) TogglePopup(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = append(v.toggles, id)
	return nil
}

func (v *fakeView) ShowNotice(n domain.Notice) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, n)
	return nil
}

func (v *fakeView) Navigate(ev domain.NavigationEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.navs = append(v.navs, ev)
	return nil
}

// liveByLayer counts markers currently on the view for a layer.
func (v *fakeView) liveByLayer(layer domain.LayerName) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, m := range v.live {
		if m.Layer == layer {
			n++
		}
	}
	return n
}

// livePopups returns the popup HTML of the markers currently on a layer.
func (v *fakeView) livePopups(layer domain.LayerName) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []string
	for _, m := range v.live {
		if m.Layer == layer {
			out = append(out, m.Popup)
		}
	}
	return out
}

// captureLogs routes the default slog logger into a buffer for the test.
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (v *fakeView) noticeCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notices)
}

// --- Helpers ---

type remoteErr struct {
	payload domain.ErrorPayload
}

func (e *remoteErr) Error() string                { return "backend: " + e.payload.Message }
func (e *remoteErr) Payload() domain.ErrorPayload { return e.payload }

func prop(id int64, name string, price float64, lon, lat float64) domain.Property {
	return domain.Property{
		ID:    id,
		Name:  name,
		Price: price,
		Location: &domain.Location{
			Coordinates: &domain.GeoJSONPoint{Type: "Point", Coordinates: []any{lon, lat}},
		},
	}
}

func uni(id int64, name string, lon, lat float64) domain.University {
	return domain.University{ID: id, Name: name, Coordinates: []any{lon, lat}}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
