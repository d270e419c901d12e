package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
)

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// CatalogRepository keeps the active catalog in memory. Catalogs are immutable so
// the same pointer is shared with readers.
type CatalogRepository struct {
	mu      sync.RWMutex
	current *domain.Catalog
}

// NewCatalogRepository seeds the repository with the supplied catalog, or the
// built-in catalog when nil.
func NewCatalogRepository(seed *domain.Catalog) *CatalogRepository {
	if seed == nil {
		seed = domain.DefaultCatalog()
	}
	return &CatalogRepository{current: seed}
}

// Current returns the active catalog.
func (r *CatalogRepository) Current(_ context.Context) (*domain.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ports.ErrCatalogNotFound
	}
	return r.current, nil
}

// Publish replaces the active catalog.
func (r *CatalogRepository) Publish(_ context.Context, catalog *domain.Catalog) error {
	if catalog == nil {
		return errors.New("catalog is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = catalog
	return nil
}
