package mapping_test

import (
	"sync"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

type easeCall struct {
	center domain.GeoPoint
	zoom   float64
}

type fitCall struct {
	bounds domain.Bounds
	opts   domain.FitOptions
}

// fakeView records what a layer does to the map surface.
type fakeView struct {
	mu      sync.Mutex
	live    map[string]domain.Marker
	added   []domain.Marker
	removed []string
	fits    []fitCall
	eases   []easeCall
	toggles []string
	notices []domain.Notice
	navs    []domain.NavigationEvent
	addErr  error
}

func newFakeView() *fakeView {
	return &fakeView{live: make(map[string]domain.Marker)}
}

func (v *fakeView) AddMarker(m domain.Marker) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.addErr != nil {
		return v.addErr
	}
	v.live[m.ID] = m
	v.added = append(v.added, m)
	return nil
}

func (v *fakeView) RemoveMarker(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.live, id)
	v.removed = append(v.removed, id)
	return nil
}

func (v *fakeView) FitBounds(b domain.Bounds, opts domain.FitOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fits = append(v.fits, fitCall{bounds: b, opts: opts})
	return nil
}

func (v *fakeView) EaseTo(center domain.GeoPoint, zoom float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.eases = append(v.eases, easeCall{center: center, zoom: zoom})
	return nil
}

func (v *fakeView) TogglePopup(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = append(v.toggles, id)
	return nil
}

func (v *fakeView) ShowNotice(n domain.Notice) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, n)
	return nil
}

func (v *fakeView) Navigate(ev domain.NavigationEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.navs = append(v.navs, ev)
	return nil
}
