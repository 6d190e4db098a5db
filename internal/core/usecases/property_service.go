package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/mapping"
	"github.com/samirrijal/unirenta/internal/core/ports"
)

// DefaultRangeKm applies when a search names a university without a radius.
const DefaultRangeKm = 2.0

const propertiesCacheKey = "properties:all"

// MaxDocumentBytes is the largest identity document accepted for upload.
const MaxDocumentBytes = 1024 * 1024

var allowedDocumentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// PropertyService handles property listing, lookup and registration.
type PropertyService struct {
	properties   ports.PropertyRepository
	universities *UniversityService
	cache        ports.CacheService
	cacheTTL     int
	nearbyKm     float64
	maxUpload    int
}

// PropertyConfig tunes a PropertyService. Zero values select defaults.
type PropertyConfig struct {
	CacheTTL       int     // seconds, default 300
	NearbyRadiusKm float64 // default DefaultRangeKm
	MaxUploadBytes int     // default MaxDocumentBytes
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(
	properties ports.PropertyRepository,
	universities *UniversityService,
	cache ports.CacheService,
	cfg PropertyConfig,
) *PropertyService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 300
	}
	if cfg.NearbyRadiusKm <= 0 {
		cfg.NearbyRadiusKm = DefaultRangeKm
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = MaxDocumentBytes
	}
	return &PropertyService{
		properties:   properties,
		universities: universities,
		cache:        cache,
		cacheTTL:     cfg.CacheTTL,
		nearbyKm:     cfg.NearbyRadiusKm,
		maxUpload:    cfg.MaxUploadBytes,
	}
}

// List returns every published property.
func (s *PropertyService) List(ctx context.Context) ([]domain.Property, error) {
	return s.cached(ctx, propertiesCacheKey, func() ([]domain.Property, error) {
		return s.properties.List(ctx)
	})
}

// Search returns the properties matching the filters. A university filter
// without a radius searches within DefaultRangeKm.
func (s *PropertyService) Search(ctx context.Context, f domain.PropertyFilters) ([]domain.Property, error) {
	if f.PriceMin != nil && *f.PriceMin < 0 {
		return nil, fmt.Errorf("%w: precioMin must not be negative", domain.ErrInvalidInput)
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return nil, fmt.Errorf("%w: precioMin is greater than precioMax", domain.ErrInvalidInput)
	}
	if f.RangeKm < 0 {
		return nil, fmt.Errorf("%w: rangoKm must not be negative", domain.ErrInvalidInput)
	}
	f.Neighborhood = strings.TrimSpace(f.Neighborhood)
	f.Municipality = strings.TrimSpace(f.Municipality)
	f.UniversityName = strings.TrimSpace(f.UniversityName)
	if (f.UniversityName != "" || f.UniversityID != 0) && f.RangeKm == 0 {
		f.RangeKm = DefaultRangeKm
	}

	return s.cached(ctx, "properties:search:"+filtersKey(f), func() ([]domain.Property, error) {
		return s.properties.Filter(ctx, f)
	})
}

// Get returns a property enriched with the universities around it and a
// WhatsApp link to its landlord.
func (s *PropertyService) Get(ctx context.Context, id int64) (*domain.PropertyDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: property id must be positive", domain.ErrInvalidInput)
	}
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.PropertyDetail{
		Property:           *p,
		NearbyUniversities: []domain.NearbyUniversity{},
		ContactURL:         ContactURL(p),
	}

	at, ok := mapping.ParseCoordinates(p.RawCoordinates())
	if ok && s.universities != nil {
		nearby, err := s.universities.Nearby(ctx, at, s.nearbyKm)
		if err != nil {
			return nil, fmt.Errorf("nearby universities: %w", err)
		}
		detail.NearbyUniversities = nearby
	}

	return detail, nil
}

// Register validates the identity document locally and forwards the
// registration to the backend.
func (s *PropertyService) Register(ctx context.Context, reg *domain.PropertyRegistration) (*domain.Property, error) {
	if strings.TrimSpace(reg.Name) == "" {
		return nil, &domain.ValidationError{Title: "Error", Message: "El nombre de la propiedad es requerido"}
	}
	if reg.LandlordID <= 0 {
		return nil, &domain.ValidationError{Title: "Error", Message: "Rentero inválido"}
	}
	if err := ValidateDocument(reg.Document, s.maxUpload); err != nil {
		return nil, err
	}

	p, err := s.properties.Register(ctx, reg)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, propertiesCacheKey)
	}
	return p, nil
}

// ValidateDocument checks an uploaded document before it is sent upstream:
// it must be present, a JPEG, PNG or PDF, and at most maxBytes long.
func ValidateDocument(doc domain.Upload, maxBytes int) error {
	if len(doc.Data) == 0 {
		return &domain.ValidationError{Title: "Error", Message: "Documento requerido"}
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0]))
	if !allowedDocumentTypes[ct] {
		return &domain.ValidationError{Title: "Formato no permitido", Message: "Solo PNG, JPG o PDF"}
	}
	if len(doc.Data) > maxBytes {
		return &domain.ValidationError{Title: "Error", Message: "Archivo muy grande (máximo 1 MB)"}
	}
	return nil
}

// ContactURL builds the WhatsApp deep link for a property's landlord, or ""
// when no phone number is on file.
func ContactURL(p *domain.Property) string {
	if p.Landlord == nil {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, p.Landlord.Phone)
	if digits == "" {
		return ""
	}

	msg := fmt.Sprintf("Hola %s, me interesa tu propiedad \"%s\" en UniRenta", p.Landlord.Name, p.Name)
	return "https://wa.me/52" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// Refresh reloads the full listing from the backend and overwrites the
// cached copy.
func (s *PropertyService) Refresh(ctx context.Context) ([]domain.Property, error) {
	props, err := s.properties.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, propertiesCacheKey, props)
	return props, nil
}

func (s *PropertyService) cached(ctx context.Context, key string, load func() ([]domain.Property, error)) ([]domain.Property, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var props []domain.Property
			if err := json.Unmarshal(data, &props); err == nil {
				return props, nil
			}
		}
	}

	props, err := load()
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, props)
	return props, nil
}

func (s *PropertyService) store(ctx context.Context, key string, props []domain.Property) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(props); err == nil {
		_ = s.cache.Set(ctx, key, data, s.cacheTTL)
	}
}

// filtersKey hashes the filters so free-text values stay out of cache keys.
func filtersKey(f domain.PropertyFilters) string {
	data, _ := json.Marshal(f)
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}
