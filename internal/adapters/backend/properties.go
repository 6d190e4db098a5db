package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// PropertyRepo implements ports.PropertyRepository against /propiedades.
type PropertyRepo struct {
	c *Client
}

// NewPropertyRepo creates a new PropertyRepo.
func NewPropertyRepo(c *Client) *PropertyRepo {
	return &PropertyRepo{c: c}
}

func (r *PropertyRepo) List(ctx context.Context) ([]domain.Property, error) {
	body, err := r.c.do(ctx, "list_properties", fasthttp.MethodGet, "/propiedades", nil)
	if err != nil {
		return nil, err
	}
	var props []domain.Property
	if err := decodeData("list_properties", body, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (r *PropertyRepo) Filter(ctx context.Context, f domain.PropertyFilters) ([]domain.Property, error) {
	body, err := r.c.do(ctx, "filter_properties", fasthttp.MethodGet, "/propiedades/filtrar", func(req *fasthttp.Request) {
		q := req.URI().QueryArgs()
		if f.PriceMin != nil {
			q.Add("precioMin", formatFloat(*f.PriceMin))
		}
		if f.PriceMax != nil {
			q.Add("precioMax", formatFloat(*f.PriceMax))
		}
		if f.Neighborhood != "" {
			q.Add("colonia", f.Neighborhood)
		}
		if f.Municipality != "" {
			q.Add("municipio", f.Municipality)
		}
		if f.UniversityID != 0 {
			q.Add("universidadId", strconv.FormatInt(f.UniversityID, 10))
		}
		if f.UniversityName != "" {
			q.Add("universidadNombre", f.UniversityName)
		}
		if f.RangeKm > 0 {
			q.Add("rangoKm", formatFloat(f.RangeKm))
		}
	})
	if err != nil {
		return nil, err
	}
	var props []domain.Property
	if err := decodeData("filter_properties", body, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (r *PropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	path := "/propiedades/" + strconv.FormatInt(id, 10)
	body, err := r.c.do(ctx, "get_property", fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var p domain.Property
	if err := decodeData("get_property", body, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("property %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// Register posts the registration as multipart/form-data: nombre,
// rentero_id, ubicacion (JSON), tipo_id and the documento file.
func (r *PropertyRepo) Register(ctx context.Context, reg *domain.PropertyRegistration) (*domain.Property, error) {
	payload, contentType, err := encodeRegistration(reg)
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}

	body, err := r.c.do(ctx, "register_property", fasthttp.MethodPost, "/propiedades/registrar", func(req *fasthttp.Request) {
		req.Header.SetContentType(contentType)
		req.SetBodyRaw(payload)
	})
	if err != nil {
		return nil, err
	}
	var p domain.Property
	if err := decodeData("register_property", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeRegistration(reg *domain.PropertyRegistration) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	location, err := json.Marshal(reg.Location)
	if err != nil {
		return nil, "", err
	}
	fields := []struct{ name, value string }{
		{"nombre", reg.Name},
		{"rentero_id", strconv.FormatInt(reg.LandlordID, 10)},
		{"ubicacion", string(location)},
		{"tipo_id", strconv.Itoa(reg.DocumentTypeID)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	filename := reg.Document.Filename
	if filename == "" {
		filename = "documento"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="documento"; filename=%q`, filename))
	h.Set("Content-Type", reg.Document.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(reg.Document.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
