package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/shared/projection"
)

var (
	ErrNotFound        = errors.New("assessment not found")
	ErrCatalogNotFound = errors.New("crate catalog not found")
)

// CatalogRepository serves the crate catalog the sizer matches against.
type CatalogRepository interface {
	// Current returns the active catalog revision.
	Current(ctx context.Context) (*domain.Catalog, error)
	// Publish stores a catalog revision and makes it current.
	Publish(ctx context.Context, catalog *domain.Catalog) error
}

type AssessmentRepository interface {
	Save(ctx context.Context, assessment *domain.Assessment) (*projection.Projection[*domain.Assessment], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Assessment], error)
	ListByBookingRef(ctx context.Context, bookingRef string) ([]*projection.Projection[*domain.Assessment], error)
}
