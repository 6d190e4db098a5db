package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/ports"
)

// CategoryCatalogUpdated tags the notice broadcast when the listing changes.
const CategoryCatalogUpdated = "catalog_updated"

// WarmStats describes one warm-up pass.
type WarmStats struct {
	Properties   int
	Universities int
	// Changed is true when the property count differs from the previous
	// successful pass. The first pass never reports a change.
	Changed  bool
	Duration time.Duration
}

// CatalogWarmer periodically reloads the property listing and the
// university directory so map sessions are served from cache.
type CatalogWarmer struct {
	properties   *PropertyService
	universities *UniversityService
	broadcaster  ports.NoticeBroadcaster

	lastCount int
	warmed    bool
}

// NewCatalogWarmer creates a warmer. broadcaster may be nil.
func NewCatalogWarmer(properties *PropertyService, universities *UniversityService, broadcaster ports.NoticeBroadcaster) *CatalogWarmer {
	return &CatalogWarmer{properties: properties, universities: universities, broadcaster: broadcaster}
}

// RunOnce refreshes both catalogs in parallel. When the property count
// changed, open sessions are told to reload. It is not safe for concurrent
// use.
func (w *CatalogWarmer) RunOnce(ctx context.Context) (WarmStats, error) {
	start := time.Now()
	var stats WarmStats

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		props, err := w.properties.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh properties: %w", err)
		}
		stats.Properties = len(props)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		unis, err := w.universities.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh universities: %w", err)
		}
		stats.Universities = len(unis)
		return nil
	})
	err := p.Wait()
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}

	stats.Changed = w.warmed && stats.Properties != w.lastCount
	w.lastCount = stats.Properties
	w.warmed = true

	if stats.Changed && w.broadcaster != nil {
		n := catalogNotice(stats.Properties)
		if err := w.broadcaster.PublishBroadcast(ctx, &n); err != nil {
			return stats, fmt.Errorf("broadcast catalog update: %w", err)
		}
	}
	return stats, nil
}

// Run calls RunOnce immediately and then every interval until ctx is done.
// report, if non-nil, receives the outcome of every pass.
func (w *CatalogWarmer) Run(ctx context.Context, interval time.Duration, report func(WarmStats, error)) {
	if report == nil {
		report = func(WarmStats, error) {}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report(w.RunOnce(ctx))
	for {
		select {
		case <-ticker.C:
			report(w.RunOnce(ctx))
		case <-ctx.Done():
			return
		}
	}
}

func catalogNotice(count int) domain.Notice {
	return domain.Notice{
		Category:  CategoryCatalogUpdated,
		Title:     "Catálogo actualizado",
		Body:      fmt.Sprintf("Hay %d propiedades disponibles. Recarga el mapa para verlas.", count),
		Severity:  domain.SeverityWarning,
		Accent:    domain.SeverityWarning.Accent(),
		TimeoutMs: domain.NoticeTimeout.Milliseconds(),
	}
}
