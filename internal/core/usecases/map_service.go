package usecases

import (
	"context"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/mapping"
)

// MarkerView is a rendered marker group as served over REST and GraphQL.
type MarkerView struct {
	Coords domain.GeoPoint          `json:"coords"`
	Count  int                      `json:"count"`
	Title  string                   `json:"title,omitempty"`
	Popup  string                   `json:"popup"`
	Items  []domain.PointOfInterest `json:"items"`
}

// MarkerSet is one layer's worth of markers. Bounds and Fit are only set for
// layers that drive the viewport.
type MarkerSet struct {
	Layer   domain.LayerName   `json:"layer"`
	Markers []MarkerView       `json:"markers"`
	Bounds  *domain.Bounds     `json:"bounds,omitempty"`
	Fit     *domain.FitOptions `json:"fit,omitempty"`
}

// MapService computes marker layers for stateless clients.
type MapService struct {
	properties   *PropertyService
	universities *UniversityService
}

// NewMapService creates a new MapService.
func NewMapService(properties *PropertyService, universities *UniversityService) *MapService {
	return &MapService{properties: properties, universities: universities}
}

// PropertyMarkers groups the listing (or the filtered search when filters
// is non-nil) into one marker per distinct coordinate.
func (s *MapService) PropertyMarkers(ctx context.Context, filters *domain.PropertyFilters) (*MarkerSet, error) {
	var (
		props []domain.Property
		err   error
	)
	if filters != nil {
		props, err = s.properties.Search(ctx, *filters)
	} else {
		props, err = s.properties.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	groups := mapping.GroupByCoordinates(props)
	set := &MarkerSet{Layer: domain.LayerProperties, Markers: markerViews(groups)}
	if b, ok := mapping.GroupBounds(groups); ok {
		fit := mapping.DefaultFit
		set.Bounds = &b
		set.Fit = &fit
	}
	return set, nil
}

// UniversitiesInView returns one marker per university inside the viewport.
func (s *MapService) UniversitiesInView(ctx context.Context, vp domain.Viewport) (*MarkerSet, error) {
	unis, err := s.universities.InView(ctx, vp)
	if err != nil {
		return nil, err
	}
	return &MarkerSet{
		Layer:   domain.LayerUniversities,
		Markers: markerViews(mapping.Singletons(unis)),
	}, nil
}

func markerViews(groups []domain.MarkerGroup) []MarkerView {
	out := make([]MarkerView, 0, len(groups))
	for _, g := range groups {
		out = append(out, MarkerView{
			Coords: g.Coords,
			Count:  g.Count(),
			Title:  mapping.MarkerTitle(g),
			Popup:  mapping.PopupHTML(g),
			Items:  g.Items,
		})
	}
	return out
}
