package geospatial

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(20.6597, -103.3496, 20.6597, -103.3496); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Guadalajara cathedral to CUCEI, roughly 3.2km
	d := Haversine(20.6767, -103.3475, 20.6566, -103.3253)
	if d < 3000 || d > 3500 {
		t.Errorf("expected about 3.2km, got %.0fm", d)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Errorf("expected ~111195m, got %.0f", d)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := orb.Point{-103.3496, 20.6597}
	box := BoundingBox(center, 2000)

	if !box.Contains(center) {
		t.Fatal("box must contain its center")
	}
	// 1.9km due north stays inside
	north := orb.Point{center.Lon(), center.Lat() + 1900.0/111320.0}
	if !box.Contains(north) {
		t.Error("expected point inside radius to be in box")
	}
	far := orb.Point{center.Lon() + 0.1, center.Lat()}
	if box.Contains(far) {
		t.Error("expected distant point outside box")
	}
}

func TestDistance_MatchesHaversine(t *testing.T) {
	a := orb.Point{-103.35, 20.66}
	b := orb.Point{-103.32, 20.65}
	if Distance(a, b) != Haversine(20.66, -103.35, 20.65, -103.32) {
		t.Error("Distance must agree with Haversine")
	}
}
