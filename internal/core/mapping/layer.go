package mapping

import (
	"fmt"
	"math"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/ports"
)

// ZoomPolicy decides how far a marker click zooms in.
type ZoomPolicy struct {
	MultiStep  float64
	MultiMin   float64
	SingleStep float64
	SingleMin  float64
	Max        float64
}

// DefaultZoomPolicy jumps further for groups than for single markers.
var DefaultZoomPolicy = ZoomPolicy{
	MultiStep:  2,
	MultiMin:   14,
	SingleStep: 1,
	SingleMin:  13,
	Max:        18,
}

// Target returns the zoom to ease to after clicking a marker of count items.
func (z ZoomPolicy) Target(current float64, count int) float64 {
	desired := math.Max(current+z.SingleStep, z.SingleMin)
	if count > 1 {
		desired = math.Max(current+z.MultiStep, z.MultiMin)
	}
	return math.Min(desired, z.Max)
}

// DefaultFit is used by layers that drive the viewport.
var DefaultFit = domain.FitOptions{Padding: 60, MaxZoom: 15, DurationMs: 600}

type placedMarker struct {
	marker domain.Marker
	group  domain.MarkerGroup
}

// Layer keeps one map layer in sync with the latest marker groups. Every
// Render tears down the previous markers and rebuilds them; there is no
// diffing. A Layer is not safe for concurrent use.
type Layer struct {
	name       domain.LayerName
	view       ports.MapView
	zoom       ZoomPolicy
	fit        *domain.FitOptions
	generation int
	order      []string
	markers    map[string]placedMarker
}

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithFitBounds makes the layer animate the view to contain its markers
// after every non-empty render.
func WithFitBounds(opts domain.FitOptions) LayerOption {
	return func(l *Layer) { l.fit = &opts }
}

// WithZoomPolicy overrides DefaultZoomPolicy.
func WithZoomPolicy(z ZoomPolicy) LayerOption {
	return func(l *Layer) { l.zoom = z }
}

// NewLayer creates an empty layer drawing on view.
func NewLayer(name domain.LayerName, view ports.MapView, opts ...LayerOption) *Layer {
	l := &Layer{
		name:    name,
		view:    view,
		zoom:    DefaultZoomPolicy,
		markers: make(map[string]placedMarker),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Name returns the layer name.
func (l *Layer) Name() domain.LayerName { return l.name }

// Len returns the number of markers currently on the map.
func (l *Layer) Len() int { return len(l.order) }

// Markers returns the current markers in placement order.
func (l *Layer) Markers() []domain.Marker {
	out := make([]domain.Marker, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.markers[id].marker)
	}
	return out
}

// Group returns the marker group behind a marker id.
func (l *Layer) Group(id string) (domain.MarkerGroup, bool) {
	pm, ok := l.markers[id]
	return pm.group, ok
}

// Clear removes every marker of the layer from the view.
func (l *Layer) Clear() error {
	var firstErr error
	for _, id := range l.order {
		if err := l.view.RemoveMarker(id); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove marker %s: %w", id, err)
		}
	}
	l.order = l.order[:0]
	clear(l.markers)
	return firstErr
}

// Render replaces the layer's markers with one marker per group.
func (l *Layer) Render(groups []domain.MarkerGroup) error {
	if err := l.Clear(); err != nil {
		return err
	}
	l.generation++

	placed := make([]domain.MarkerGroup, 0, len(groups))
	for i, g := range groups {
		if g.Count() == 0 {
			continue
		}
		m := domain.Marker{
			ID:     fmt.Sprintf("%s-%d-%d", l.name, l.generation, i),
			Layer:  l.name,
			Coords: g.Coords,
			Count:  g.Count(),
			Title:  MarkerTitle(g),
			Popup:  PopupHTML(g),
		}
		if err := l.view.AddMarker(m); err != nil {
			return fmt.Errorf("add marker %s: %w", m.ID, err)
		}
		l.order = append(l.order, m.ID)
		l.markers[m.ID] = placedMarker{marker: m, group: g}
		placed = append(placed, g)
	}

	if l.fit == nil {
		return nil
	}
	if b, ok := GroupBounds(placed); ok {
		if err := l.view.FitBounds(b, *l.fit); err != nil {
			return fmt.Errorf("fit bounds: %w", err)
		}
	}
	return nil
}

// Click handles a click on one of the layer's markers: ease towards it and
// toggle its popup. It returns the zoom the view is easing to.
func (l *Layer) Click(id string, currentZoom float64) (float64, error) {
	pm, ok := l.markers[id]
	if !ok {
		return currentZoom, fmt.Errorf("marker %s: %w", id, domain.ErrNotFound)
	}
	target := l.zoom.Target(currentZoom, pm.group.Count())
	if err := l.view.EaseTo(pm.group.Coords, target); err != nil {
		return currentZoom, fmt.Errorf("ease to marker %s: %w", id, err)
	}
	if err := l.view.TogglePopup(id); err != nil {
		return target, fmt.Errorf("toggle popup %s: %w", id, err)
	}
	return target, nil
}
