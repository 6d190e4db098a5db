package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// respondPage slices items by the offset/limit query parameters and writes
// the page with Link headers.
func respondPage[T any](c *fiber.Ctx, items []T) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", defaultPageLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	total := len(items)
	page := []T{}
	if offset < total {
		end := min(offset+limit, total)
		page = items[offset:end]
	}

	pg := Pagination{Offset: offset, Limit: limit, Total: total}
	SetLinkHeaders(c, pg)
	return c.JSON(PaginatedResponse[T]{Data: page, Pagination: pg})
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses. Filter
// parameters of the current request are carried into every link.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	keep := carriedQuery(c)
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?%soffset=%d&limit=%d>; rel="%s"`, base, keep, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}

// carriedQuery returns the query string without offset and limit, with a
// trailing '&' when non-empty.
func carriedQuery(c *fiber.Ctx) string {
	var parts []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key == "offset" || key == "limit" {
			return
		}
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(string(v)))
	})
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "&") + "&"
}
