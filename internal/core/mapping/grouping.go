// Package mapping holds the map-side logic: grouping points of interest into
// markers, viewport filtering, popup rendering and marker lifecycle.
package mapping

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// ParseCoordinates parses a raw [lng, lat] pair. It reports false for
// missing, short, non-numeric, non-finite or out-of-range input.
func ParseCoordinates(raw []any) (domain.GeoPoint, bool) {
	if len(raw) < 2 {
		return domain.GeoPoint{}, false
	}
	lng, ok := toFloat(raw[0])
	if !ok {
		return domain.GeoPoint{}, false
	}
	lat, ok := toFloat(raw[1])
	if !ok {
		return domain.GeoPoint{}, false
	}
	p := domain.GeoPoint{Lon: lng, Lat: lat}
	return p, p.Valid()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// GroupByCoordinates groups items whose parsed coordinates are exactly equal.
// Groups come out in first-seen order and keep insertion order inside.
// Items with unusable coordinates are dropped. Points that differ by any
// amount, however small, end up in different groups.
func GroupByCoordinates[T domain.PointOfInterest](items []T) []domain.MarkerGroup {
	index := make(map[domain.GeoPoint]int)
	var groups []domain.MarkerGroup

	for _, it := range items {
		p, ok := ParseCoordinates(it.RawCoordinates())
		if !ok {
			continue
		}
		if i, seen := index[p]; seen {
			groups[i].Items = append(groups[i].Items, it)
			continue
		}
		index[p] = len(groups)
		groups = append(groups, domain.MarkerGroup{Coords: p, Items: []domain.PointOfInterest{it}})
	}
	return groups
}

// Singletons wraps every item with usable coordinates in its own group.
// The university layer draws one marker per item, even when two campuses
// share a point.
func Singletons[T domain.PointOfInterest](items []T) []domain.MarkerGroup {
	groups := make([]domain.MarkerGroup, 0, len(items))
	for _, it := range items {
		p, ok := ParseCoordinates(it.RawCoordinates())
		if !ok {
			continue
		}
		groups = append(groups, domain.MarkerGroup{Coords: p, Items: []domain.PointOfInterest{it}})
	}
	return groups
}

// GroupBounds returns the smallest bounds containing every group, and false
// when there are no groups.
func GroupBounds(groups []domain.MarkerGroup) (domain.Bounds, bool) {
	if len(groups) == 0 {
		return domain.Bounds{}, false
	}
	b := groups[0].Coords.Orb().Bound()
	for _, g := range groups[1:] {
		b = b.Extend(g.Coords.Orb())
	}
	return domain.BoundsFromOrb(b), true
}
