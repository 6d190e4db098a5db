package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether both components are finite and inside WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || math.IsInf(p.Lon, 0) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// Orb converts the point to an orb.Point ([lng, lat]).
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Bounds is a rectangle given by its southwest and northeast corners.
// Callers may hand in corners with the labels swapped; use Normalize before
// doing any containment math.
type Bounds struct {
	SouthWest GeoPoint `json:"southwest"`
	NorthEast GeoPoint `json:"northeast"`
}

// Normalize returns the bounds with min/max fixed independently per axis.
func (b Bounds) Normalize() Bounds {
	return Bounds{
		SouthWest: GeoPoint{
			Lon: math.Min(b.SouthWest.Lon, b.NorthEast.Lon),
			Lat: math.Min(b.SouthWest.Lat, b.NorthEast.Lat),
		},
		NorthEast: GeoPoint{
			Lon: math.Max(b.SouthWest.Lon, b.NorthEast.Lon),
			Lat: math.Max(b.SouthWest.Lat, b.NorthEast.Lat),
		},
	}
}

// Orb converts the normalized bounds to an orb.Bound.
func (b Bounds) Orb() orb.Bound {
	n := b.Normalize()
	return orb.Bound{Min: n.SouthWest.Orb(), Max: n.NorthEast.Orb()}
}

// BoundsFromOrb converts an orb.Bound back to Bounds.
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		SouthWest: GeoPoint{Lon: b.Min.Lon(), Lat: b.Min.Lat()},
		NorthEast: GeoPoint{Lon: b.Max.Lon(), Lat: b.Max.Lat()},
	}
}

// Viewport is the visible map area at a zoom level.
type Viewport struct {
	Bounds Bounds  `json:"bounds"`
	Zoom   float64 `json:"zoom"`
}
