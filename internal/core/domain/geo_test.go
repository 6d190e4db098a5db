package domain_test

import (
	"math"
	"testing"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

func TestGeoPoint_Valid(t *testing.T) {
	tests := []struct {
		p    domain.GeoPoint
		want bool
	}{
		{domain.GeoPoint{Lon: -99.13, Lat: 19.43}, true},
		{domain.GeoPoint{Lon: 180, Lat: -90}, true},
		{domain.GeoPoint{Lon: 180.1, Lat: 0}, false},
		{domain.GeoPoint{Lon: 0, Lat: 91}, false},
		{domain.GeoPoint{Lon: math.NaN(), Lat: 0}, false},
		{domain.GeoPoint{Lon: 0, Lat: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestBounds_Normalize(t *testing.T) {
	b := domain.Bounds{
		SouthWest: domain.GeoPoint{Lon: -99.1, Lat: 19.3},
		NorthEast: domain.GeoPoint{Lon: -99.2, Lat: 19.4},
	}
	n := b.Normalize()
	if n.SouthWest.Lon != -99.2 || n.NorthEast.Lon != -99.1 {
		t.Errorf("longitudes not normalized: %+v", n)
	}
	if n.SouthWest.Lat != 19.3 || n.NorthEast.Lat != 19.4 {
		t.Errorf("latitudes should be untouched: %+v", n)
	}
}
