package backend

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// UniversityRepo implements ports.UniversityRepository.
type UniversityRepo struct {
	c    *Client
	path string
}

// NewUniversityRepo creates a new UniversityRepo reading from /universidades.
func NewUniversityRepo(c *Client) *UniversityRepo {
	return &UniversityRepo{c: c, path: "/universidades"}
}

func (r *UniversityRepo) List(ctx context.Context) ([]domain.University, error) {
	body, err := r.c.do(ctx, "list_universities", fasthttp.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}
	var unis []domain.University
	if err := decodeData("list_universities", body, &unis); err != nil {
		return nil, err
	}
	return unis, nil
}
