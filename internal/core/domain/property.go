package domain

import (
	"errors"
	"strconv"
)

var (
	// ErrNotFound is returned when the backend has no entity with the given id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks request data rejected before reaching the backend.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError is a local input check failure carrying a user-facing
// title and message.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// PoIKind identifies the concrete type behind a PointOfInterest.
type PoIKind string

const (
	KindProperty   PoIKind = "property"
	KindUniversity PoIKind = "university"
)

// PointOfInterest is anything that can be placed on the map.
type PointOfInterest interface {
	PoIID() string
	DisplayName() string
	// RawCoordinates returns the [lng, lat] pair as received on the wire.
	// Elements may be numbers, numeric strings, or garbage.
	RawCoordinates() []any
	PoIKind() PoIKind
}

// Priced is implemented by points of interest that carry a monthly price.
type Priced interface {
	MonthlyPrice() float64
}

// Landlord ("rentero") owning a property.
type Landlord struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`
}

// GeoJSONPoint mirrors the PostGIS point the backend embeds in ubicacion.
type GeoJSONPoint struct {
	Type        string `json:"type,omitempty"`
	Coordinates []any  `json:"coordinates"`
}

// Location ("ubicacion") of a property.
type Location struct {
	Name         string        `json:"nombre,omitempty"`
	Address      string        `json:"direccion,omitempty"`
	Street       string        `json:"calle,omitempty"`
	Neighborhood string        `json:"colonia,omitempty"`
	Number       string        `json:"numero,omitempty"`
	PostalCode   string        `json:"codigo_postal,omitempty"`
	Municipality *string       `json:"municipio,omitempty"`
	State        *string       `json:"estado,omitempty"`
	Coordinates  *GeoJSONPoint `json:"coordenadas,omitempty"`
}

// Property is a rental listing.
type Property struct {
	ID          int64          `json:"id"`
	Name        string         `json:"nombre"`
	Price       float64        `json:"precio"`
	Status      string         `json:"estado,omitempty"`
	Description map[string]any `json:"descripcion,omitempty"`
	Images      []string       `json:"imagenes,omitempty"`
	Location    *Location      `json:"ubicacion,omitempty"`
	Landlord    *Landlord      `json:"rentero,omitempty"`
}

func (p Property) PoIID() string         { return strconv.FormatInt(p.ID, 10) }
func (p Property) DisplayName() string   { return p.Name }
func (p Property) PoIKind() PoIKind      { return KindProperty }
func (p Property) MonthlyPrice() float64 { return p.Price }

func (p Property) RawCoordinates() []any {
	if p.Location == nil || p.Location.Coordinates == nil {
		return nil
	}
	return p.Location.Coordinates.Coordinates
}

// University is a campus shown as a secondary map layer.
type University struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"nombre"`
	Coordinates []any  `json:"coordenadas"`
}

// PoIID falls back to the name because the lookup API does not always send ids.
func (u University) PoIID() string {
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return u.Name
}

func (u University) DisplayName() string   { return u.Name }
func (u University) PoIKind() PoIKind      { return KindUniversity }
func (u University) RawCoordinates() []any { return u.Coordinates }

// PropertyFilters narrows a property listing.
type PropertyFilters struct {
	PriceMin       *float64 `json:"precioMin,omitempty"`
	PriceMax       *float64 `json:"precioMax,omitempty"`
	Neighborhood   string   `json:"colonia,omitempty"`
	Municipality   string   `json:"municipio,omitempty"`
	UniversityID   int64    `json:"universidadId,omitempty"`
	UniversityName string   `json:"universidadNombre,omitempty"`
	RangeKm        float64  `json:"rangoKm,omitempty"`
}

// Upload is a file attached to a registration.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PropertyRegistration is the multipart payload for registering a property.
type PropertyRegistration struct {
	Name           string   `json:"nombre"`
	LandlordID     int64    `json:"rentero_id"`
	Location       Location `json:"ubicacion"`
	DocumentTypeID int      `json:"tipo_id"`
	Document       Upload   `json:"-"`
}

// NearbyUniversity is a university annotated with its distance to a property.
type NearbyUniversity struct {
	University
	DistanceMeters float64 `json:"distancia_m"`
}

// PropertyDetail is a property enriched for the detail page.
type PropertyDetail struct {
	Property
	NearbyUniversities []NearbyUniversity `json:"universidades_cercanas"`
	ContactURL         string             `json:"contacto_url,omitempty"`
}
