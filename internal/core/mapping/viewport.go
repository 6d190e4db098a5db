package mapping

import (
	"github.com/samirrijal/unirenta/internal/core/domain"
)

// DefaultMinZoom is the zoom below which secondary markers are hidden.
const DefaultMinZoom = 13.0

// FilterViewport returns the items inside the viewport rectangle, edges
// included. Below minZoom nothing is returned. Corner labels may be swapped;
// each axis is normalized on its own.
func FilterViewport[T domain.PointOfInterest](items []T, vp domain.Viewport, minZoom float64) []T {
	if vp.Zoom < minZoom {
		return nil
	}
	bound := vp.Bounds.Orb()

	var out []T
	for _, it := range items {
		p, ok := ParseCoordinates(it.RawCoordinates())
		if !ok {
			continue
		}
		if bound.Contains(p.Orb()) {
			out = append(out, it)
		}
	}
	return out
}
