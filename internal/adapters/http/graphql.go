package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/mapping"
	"github.com/samirrijal/unirenta/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"southwest": &graphql.Field{Type: geoPointType},
			"northeast": &graphql.Field{Type: geoPointType},
		},
	})

	markerItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerItem",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"kind":  &graphql.Field{Type: graphql.String},
			"name":  &graphql.Field{Type: graphql.String},
			"price": &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerGroup",
		Fields: graphql.Fields{
			"coords": &graphql.Field{Type: geoPointType},
			"count":  &graphql.Field{Type: graphql.Int},
			"title":  &graphql.Field{Type: graphql.String},
			"popup":  &graphql.Field{Type: graphql.String},
			"items":  &graphql.Field{Type: graphql.NewList(markerItemType)},
		},
	})

	markerSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerSet",
		Fields: graphql.Fields{
			"layer":   &graphql.Field{Type: graphql.String},
			"markers": &graphql.Field{Type: graphql.NewList(markerType)},
			"bounds":  &graphql.Field{Type: boundsType},
		},
	})

	universityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyUniversity",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"coords":     &graphql.Field{Type: geoPointType},
			"distance_m": &graphql.Field{Type: graphql.Float},
		},
	})

	propertyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Property",
		Fields: graphql.Fields{
			"id":                  &graphql.Field{Type: graphql.String},
			"name":                &graphql.Field{Type: graphql.String},
			"price":               &graphql.Field{Type: graphql.Float},
			"status":              &graphql.Field{Type: graphql.String},
			"neighborhood":        &graphql.Field{Type: graphql.String},
			"coords":              &graphql.Field{Type: geoPointType},
			"images":              &graphql.Field{Type: graphql.NewList(graphql.String)},
			"contact_url":         &graphql.Field{Type: graphql.String},
			"nearby_universities": &graphql.Field{Type: graphql.NewList(universityType)},
		},
	})

	noticeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Notice",
		Fields: graphql.Fields{
			"category":   &graphql.Field{Type: graphql.String},
			"title":      &graphql.Field{Type: graphql.String},
			"body":       &graphql.Field{Type: graphql.String},
			"severity":   &graphql.Field{Type: graphql.String},
			"accent":     &graphql.Field{Type: graphql.String},
			"fields":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"timeout_ms": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markerGroups": &graphql.Field{
				Type:        markerSetType,
				Description: "Property markers grouped by exact coordinates",
				Args: graphql.FieldConfigArgument{
					"precioMin":         &graphql.ArgumentConfig{Type: graphql.Float},
					"precioMax":         &graphql.ArgumentConfig{Type: graphql.Float},
					"colonia":           &graphql.ArgumentConfig{Type: graphql.String},
					"municipio":         &graphql.ArgumentConfig{Type: graphql.String},
					"universidadNombre": &graphql.ArgumentConfig{Type: graphql.String},
					"rangoKm":           &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					set, err := deps.Map.PropertyMarkers(p.Context, filtersFromArgs(p.Args))
					if err != nil {
						return nil, err
					}
					return markerSetMap(set), nil
				},
			},
			"universitiesInView": &graphql.Field{
				Type:        markerSetType,
				Description: "University markers inside a viewport; empty below the minimum zoom",
				Args: graphql.FieldConfigArgument{
					"swLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"swLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"neLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"neLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zoom":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vp := domain.Viewport{
						Bounds: domain.Bounds{
							SouthWest: domain.GeoPoint{Lon: p.Args["swLon"].(float64), Lat: p.Args["swLat"].(float64)},
							NorthEast: domain.GeoPoint{Lon: p.Args["neLon"].(float64), Lat: p.Args["neLat"].(float64)},
						},
						Zoom: p.Args["zoom"].(float64),
					}
					set, err := deps.Map.UniversitiesInView(p.Context, vp)
					if err != nil {
						return nil, err
					}
					return markerSetMap(set), nil
				},
			},
			"property": &graphql.Field{
				Type:        propertyType,
				Description: "A property with nearby universities and contact link",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					detail, err := deps.Properties.Get(p.Context, int64(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return propertyMap(detail), nil
				},
			},
			"classifyError": &graphql.Field{
				Type:        noticeType,
				Description: "Classify a raw backend error body into a user-facing notice",
				Args: graphql.FieldConfigArgument{
					"body":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"status": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					payload := domain.DecodeErrorPayload(p.Args["status"].(int), []byte(p.Args["body"].(string)))
					n := deps.Notices.Classify(p.Context, payload)
					return noticeMap(n), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

func filtersFromArgs(args map[string]interface{}) *domain.PropertyFilters {
	var f domain.PropertyFilters
	given := false
	if v, ok := args["precioMin"].(float64); ok {
		f.PriceMin = &v
		given = true
	}
	if v, ok := args["precioMax"].(float64); ok {
		f.PriceMax = &v
		given = true
	}
	if v, ok := args["rangoKm"].(float64); ok {
		f.RangeKm = v
	}
	for key, dst := range map[string]*string{
		"colonia":           &f.Neighborhood,
		"municipio":         &f.Municipality,
		"universidadNombre": &f.UniversityName,
	} {
		if v, ok := args[key].(string); ok && v != "" {
			*dst = v
			given = true
		}
	}
	if !given {
		return nil
	}
	return &f
}

func geoPointMap(p domain.GeoPoint) map[string]interface{} {
	return map[string]interface{}{"lon": p.Lon, "lat": p.Lat}
}

// coordsMap returns an untyped nil for unparseable coordinates so the field
// resolves to null.
func coordsMap(raw []any) interface{} {
	p, ok := mapping.ParseCoordinates(raw)
	if !ok {
		return nil
	}
	return geoPointMap(p)
}

func markerSetMap(set *usecases.MarkerSet) map[string]interface{} {
	markers := make([]map[string]interface{}, 0, len(set.Markers))
	for _, m := range set.Markers {
		items := make([]map[string]interface{}, 0, len(m.Items))
		for _, it := range m.Items {
			item := map[string]interface{}{
				"id":   it.PoIID(),
				"kind": string(it.PoIKind()),
				"name": it.DisplayName(),
			}
			if priced, ok := it.(domain.Priced); ok {
				item["price"] = priced.MonthlyPrice()
			}
			items = append(items, item)
		}
		markers = append(markers, map[string]interface{}{
			"coords": geoPointMap(m.Coords),
			"count":  m.Count,
			"title":  m.Title,
			"popup":  m.Popup,
			"items":  items,
		})
	}

	out := map[string]interface{}{
		"layer":   string(set.Layer),
		"markers": markers,
	}
	if set.Bounds != nil {
		out["bounds"] = map[string]interface{}{
			"southwest": geoPointMap(set.Bounds.SouthWest),
			"northeast": geoPointMap(set.Bounds.NorthEast),
		}
	}
	return out
}

func propertyMap(d *domain.PropertyDetail) map[string]interface{} {
	nearby := make([]map[string]interface{}, 0, len(d.NearbyUniversities))
	for _, u := range d.NearbyUniversities {
		nearby = append(nearby, map[string]interface{}{
			"id":         u.PoIID(),
			"name":       u.Name,
			"coords":     coordsMap(u.Coordinates),
			"distance_m": u.DistanceMeters,
		})
	}

	out := map[string]interface{}{
		"id":                  d.PoIID(),
		"name":                d.Name,
		"price":               d.Price,
		"status":              d.Status,
		"coords":              coordsMap(d.RawCoordinates()),
		"images":              d.Images,
		"contact_url":         d.ContactURL,
		"nearby_universities": nearby,
	}
	if d.Location != nil {
		out["neighborhood"] = d.Location.Neighborhood
	}
	return out
}

func noticeMap(n domain.Notice) map[string]interface{} {
	return map[string]interface{}{
		"category":   n.Category,
		"title":      n.Title,
		"body":       n.Body,
		"severity":   string(n.Severity),
		"accent":     n.Accent,
		"fields":     n.Fields,
		"timeout_ms": n.TimeoutMs,
	}
}
