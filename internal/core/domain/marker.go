package domain

// LayerName identifies a marker layer on the map.
type LayerName string

const (
	LayerProperties   LayerName = "properties"
	LayerUniversities LayerName = "universities"
)

// MarkerGroup is a set of points of interest sharing exact coordinates,
// rendered as a single marker. A group is never empty.
type MarkerGroup struct {
	Coords GeoPoint          `json:"coords"`
	Items  []PointOfInterest `json:"items"`
}

// Count returns the number of items in the group.
func (g MarkerGroup) Count() int { return len(g.Items) }

// Marker is what gets placed on the map surface.
type Marker struct {
	ID     string    `json:"id"`
	Layer  LayerName `json:"layer"`
	Coords GeoPoint  `json:"coords"`
	Count  int       `json:"count"`
	Title  string    `json:"title,omitempty"`
	Popup  string    `json:"popup"`
}

// FitOptions controls how the view animates to contain a set of markers.
type FitOptions struct {
	Padding    int     `json:"padding"`
	MaxZoom    float64 `json:"max_zoom"`
	DurationMs int     `json:"duration_ms"`
}

// NavigationEvent is emitted when a popup entry is selected.
type NavigationEvent struct {
	Kind      PoIKind `json:"kind"`
	ID        string  `json:"id"`
	SessionID string  `json:"session_id,omitempty"`
}
