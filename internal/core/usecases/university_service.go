package usecases

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/mapping"
	"github.com/samirrijal/unirenta/internal/core/ports"
	"github.com/samirrijal/unirenta/internal/pkg/geospatial"
)

const universitiesCacheKey = "universities:all"

// UniversityService reads the university directory.
type UniversityService struct {
	universities ports.UniversityRepository
	cache        ports.CacheService
	cacheTTL     int
	minZoom      float64
}

// NewUniversityService creates a new UniversityService. minZoom is the zoom
// below which the university layer stays empty.
func NewUniversityService(universities ports.UniversityRepository, cache ports.CacheService, cacheTTL int, minZoom float64) *UniversityService {
	if cacheTTL <= 0 {
		cacheTTL = 300
	}
	if minZoom <= 0 {
		minZoom = mapping.DefaultMinZoom
	}
	return &UniversityService{universities: universities, cache: cache, cacheTTL: cacheTTL, minZoom: minZoom}
}

// MinZoom returns the zoom threshold for the university layer.
func (s *UniversityService) MinZoom() float64 { return s.minZoom }

// List returns every university, served from cache when possible.
func (s *UniversityService) List(ctx context.Context) ([]domain.University, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, universitiesCacheKey); err == nil {
			var unis []domain.University
			if err := json.Unmarshal(data, &unis); err == nil {
				return unis, nil
			}
		}
	}

	return s.Refresh(ctx)
}

// Refresh reloads the directory from the backend and overwrites the cached
// copy.
func (s *UniversityService) Refresh(ctx context.Context) ([]domain.University, error) {
	unis, err := s.universities.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(unis); err == nil {
			_ = s.cache.Set(ctx, universitiesCacheKey, data, s.cacheTTL)
		}
	}
	return unis, nil
}

// InView returns the universities inside the viewport, or nothing when the
// map is zoomed out past the threshold.
func (s *UniversityService) InView(ctx context.Context, vp domain.Viewport) ([]domain.University, error) {
	if vp.Zoom < s.minZoom {
		return nil, nil
	}
	unis, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapping.FilterViewport(unis, vp, s.minZoom), nil
}

// Nearby returns the universities within radiusKm of p, closest first.
func (s *UniversityService) Nearby(ctx context.Context, p domain.GeoPoint, radiusKm float64) ([]domain.NearbyUniversity, error) {
	unis, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return nearbyUniversities(unis, p, radiusKm), nil
}

func nearbyUniversities(unis []domain.University, p domain.GeoPoint, radiusKm float64) []domain.NearbyUniversity {
	radius := radiusKm * 1000
	box := geospatial.BoundingBox(p.Orb(), radius)

	out := make([]domain.NearbyUniversity, 0)
	for _, u := range unis {
		at, ok := mapping.ParseCoordinates(u.Coordinates)
		if !ok || !box.Contains(at.Orb()) {
			continue
		}
		d := geospatial.Distance(p.Orb(), at.Orb())
		if d > radius {
			continue
		}
		out = append(out, domain.NearbyUniversity{University: u, DistanceMeters: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}
