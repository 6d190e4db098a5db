package ports

import (
	"context"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// PropertyRepository reads and registers properties on the rental backend.
type PropertyRepository interface {
	List(ctx context.Context) ([]domain.Property, error)
	Filter(ctx context.Context, filters domain.PropertyFilters) ([]domain.Property, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Register(ctx context.Context, reg *domain.PropertyRegistration) (*domain.Property, error)
}

// UniversityRepository reads the university directory.
type UniversityRepository interface {
	List(ctx context.Context) ([]domain.University, error)
}
