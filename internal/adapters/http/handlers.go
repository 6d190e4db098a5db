package http

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// ListPropertiesHandler returns all published properties, paginated.
func ListPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		props, err := deps.Properties.List(c.UserContext())
		if err != nil {
			return errFromService(c, deps, err)
		}
		return respondPage(c, props)
	}
}

// SearchPropertiesHandler filters properties by price, neighbourhood,
// municipality and university proximity.
func SearchPropertiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, _, err := parseFilters(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		props, err := deps.Properties.Search(c.UserContext(), f)
		if err != nil {
			return errFromService(c, deps, err)
		}
		return respondPage(c, props)
	}
}

// GetPropertyHandler returns a single property with nearby universities.
func GetPropertyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return errBadRequest(c, "property id must be a positive integer")
		}

		detail, err := deps.Properties.Get(c.UserContext(), id)
		if err != nil {
			return errFromService(c, deps, err)
		}

		c.Set("Cache-Control", "public, max-age=120")
		return c.JSON(detail)
	}
}

// RegisterPropertyHandler accepts multipart/form-data with nombre,
// rentero_id, ubicacion (JSON), tipo_id and the documento file.
func RegisterPropertyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg := domain.PropertyRegistration{Name: strings.TrimSpace(c.FormValue("nombre"))}

		landlordID, err := strconv.ParseInt(c.FormValue("rentero_id"), 10, 64)
		if err != nil {
			return errBadRequest(c, "rentero_id must be an integer")
		}
		reg.LandlordID = landlordID

		if raw := c.FormValue("tipo_id"); raw != "" {
			if reg.DocumentTypeID, err = strconv.Atoi(raw); err != nil {
				return errBadRequest(c, "tipo_id must be an integer")
			}
		}
		if raw := c.FormValue("ubicacion"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &reg.Location); err != nil {
				return errBadRequest(c, "ubicacion must be a JSON object")
			}
		}

		if fh, err := c.FormFile("documento"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return errBadRequest(c, "documento could not be read")
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return errBadRequest(c, "documento could not be read")
			}
			reg.Document = domain.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			}
		}

		p, err := deps.Properties.Register(c.UserContext(), &reg)
		if err != nil {
			return errFromService(c, deps, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PropertyMarkersHandler returns the property layer: one marker per distinct
// coordinate with popup HTML, plus the bounds to fit.
func PropertyMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, filtered, err := parseFilters(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var filters *domain.PropertyFilters
		if filtered {
			filters = &f
		}

		set, err := deps.Map.PropertyMarkers(c.UserContext(), filters)
		if err != nil {
			return errFromService(c, deps, err)
		}
		return c.JSON(set)
	}
}

// UniversitiesInViewHandler returns university markers inside a viewport.
func UniversitiesInViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vp, err := parseViewport(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		set, err := deps.Map.UniversitiesInView(c.UserContext(), vp)
		if err != nil {
			return errFromService(c, deps, err)
		}
		return c.JSON(set)
	}
}

// ClassifyNoticeHandler classifies a raw backend error body. The HTTP status
// the body came with may be passed as ?status=.
func ClassifyNoticeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.QueryInt("status", 0)
		if status < 0 || status > 599 {
			return errBadRequest(c, "status must be between 0 and 599")
		}
		p := domain.DecodeErrorPayload(status, c.Body())
		return c.JSON(deps.Notices.Classify(c.UserContext(), p))
	}
}

type broadcastRequest struct {
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Severity domain.Severity `json:"severity"`
}

// BroadcastNoticeHandler pushes an operator notice to every open map session.
func BroadcastNoticeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Broadcaster == nil {
			return newError(c, fiber.StatusServiceUnavailable, "unavailable", "broadcasts are not configured", nil)
		}

		var req broadcastRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
			return errBadRequest(c, "title and body are required")
		}
		if req.Severity == "" {
			req.Severity = domain.SeverityWarning
		}
		if req.Severity != domain.SeverityWarning && req.Severity != domain.SeverityError {
			return errBadRequest(c, "severity must be warning or error")
		}

		n := domain.Notice{
			Category:  "broadcast",
			Title:     req.Title,
			Body:      req.Body,
			Severity:  req.Severity,
			Accent:    req.Severity.Accent(),
			TimeoutMs: domain.NoticeTimeout.Milliseconds(),
		}
		if err := deps.Broadcaster.PublishBroadcast(c.UserContext(), &n); err != nil {
			return errInternal(c, "broadcast failed")
		}
		return c.Status(fiber.StatusAccepted).JSON(n)
	}
}

// parseFilters reads the backend's filter vocabulary from the query string.
// The bool reports whether any filter was given.
func parseFilters(c *fiber.Ctx) (domain.PropertyFilters, bool, error) {
	var f domain.PropertyFilters
	given := false

	optFloat := func(name string) (*float64, error) {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", name)
		}
		given = true
		return &v, nil
	}

	var err error
	if f.PriceMin, err = optFloat("precioMin"); err != nil {
		return f, false, err
	}
	if f.PriceMax, err = optFloat("precioMax"); err != nil {
		return f, false, err
	}
	rango, err := optFloat("rangoKm")
	if err != nil {
		return f, false, err
	}
	if rango != nil {
		f.RangeKm = *rango
	}
	if raw := c.Query("universidadId"); raw != "" {
		if f.UniversityID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return f, false, fmt.Errorf("universidadId must be an integer")
		}
		given = true
	}

	f.Neighborhood = c.Query("colonia")
	f.Municipality = c.Query("municipio")
	f.UniversityName = c.Query("universidadNombre")
	if f.Neighborhood != "" || f.Municipality != "" || f.UniversityName != "" {
		given = true
	}
	return f, given, nil
}

func parseViewport(c *fiber.Ctx) (domain.Viewport, error) {
	var vp domain.Viewport
	for _, name := range []string{"sw_lon", "sw_lat", "ne_lon", "ne_lat", "zoom"} {
		if c.Query(name) == "" {
			return vp, fmt.Errorf("%s is required", name)
		}
	}

	var vals [5]float64
	for i, name := range []string{"sw_lon", "sw_lat", "ne_lon", "ne_lat", "zoom"} {
		v, err := strconv.ParseFloat(c.Query(name), 64)
		if err != nil {
			return vp, fmt.Errorf("%s must be a number", name)
		}
		vals[i] = v
	}

	vp.Bounds = domain.Bounds{
		SouthWest: domain.GeoPoint{Lon: vals[0], Lat: vals[1]},
		NorthEast: domain.GeoPoint{Lon: vals[2], Lat: vals[3]},
	}
	vp.Zoom = vals[4]
	if !vp.Bounds.SouthWest.Valid() || !vp.Bounds.NorthEast.Valid() {
		return vp, fmt.Errorf("viewport corners must be valid WGS 84 coordinates")
	}
	if vp.Zoom < 0 || vp.Zoom > 24 {
		return vp, fmt.Errorf("zoom must be between 0 and 24")
	}
	return vp, nil
}
