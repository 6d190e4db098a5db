package usecases_test

import (
	"context"
	"testing"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/usecases"
)

var gdlViewport = domain.Viewport{
	Bounds: domain.Bounds{
		SouthWest: domain.GeoPoint{Lon: -103.40, Lat: 20.60},
		NorthEast: domain.GeoPoint{Lon: -103.30, Lat: 20.70},
	},
	Zoom: 14,
}

func TestUniversityService_InViewFilters(t *testing.T) {
	repo := &mockUniversityRepo{
		listFn: func(ctx context.Context) ([]domain.University, error) {
			return []domain.University{
				uni(1, "CUCEI", -103.3250, 20.6570),
				uni(2, "UNAM", -99.1870, 19.3320),
				uni(3, "ITESO", -103.4180, 20.6080),
			}, nil
		},
	}
	svc := usecases.NewUniversityService(repo, nil, 0, 0)

	got, err := svc.InView(context.Background(), gdlViewport)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "CUCEI" {
		t.Errorf("expected only CUCEI, got %+v", got)
	}
}

func TestUniversityService_InViewBelowThresholdSkipsBackend(t *testing.T) {
	repo := &mockUniversityRepo{}
	svc := usecases.NewUniversityService(repo, nil, 0, 0)

	vp := gdlViewport
	vp.Zoom = 12.9
	got, err := svc.InView(context.Background(), vp)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no universities, got %d", len(got))
	}
	if repo.Calls() != 0 {
		t.Errorf("expected no backend call, got %d", repo.Calls())
	}
}

func TestUniversityService_CustomThreshold(t *testing.T) {
	repo := &mockUniversityRepo{
		listFn: func(ctx context.Context) ([]domain.University, error) {
			return []domain.University{uni(1, "CUCEI", -103.3250, 20.6570)}, nil
		},
	}
	svc := usecases.NewUniversityService(repo, nil, 0, 11)
	if svc.MinZoom() != 11 {
		t.Fatalf("expected min zoom 11, got %v", svc.MinZoom())
	}

	vp := gdlViewport
	vp.Zoom = 11
	got, err := svc.InView(context.Background(), vp)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 university at threshold, got %d", len(got))
	}
}

func TestUniversityService_ListCached(t *testing.T) {
	repo := &mockUniversityRepo{
		listFn: func(ctx context.Context) ([]domain.University, error) {
			return []domain.University{uni(1, "CUCEI", -103.3250, 20.6570)}, nil
		},
	}
	svc := usecases.NewUniversityService(repo, newMockCache(), 60, 0)

	for i := 0; i < 3; i++ {
		unis, err := svc.List(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(unis) != 1 {
			t.Fatalf("expected 1 university, got %d", len(unis))
		}
		if _, ok := unis[0].RawCoordinates()[0].(float64); !ok {
			t.Fatalf("expected numeric coordinates after cache round trip, got %T", unis[0].RawCoordinates()[0])
		}
	}
	if repo.Calls() != 1 {
		t.Errorf("expected 1 backend call, got %d", repo.Calls())
	}
}
