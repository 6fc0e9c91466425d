package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// ErrCatalogNotLoaded is returned before the first successful Replace
var ErrCatalogNotLoaded = errors.New("catalog not loaded")

// CatalogRepository holds the current catalog in memory. It is the target
// of the catalog file feed; a failed Replace keeps the previous catalog.
type CatalogRepository struct {
	current *catalog.Catalog
	mutex   sync.RWMutex
}

// NewCatalogRepository creates an empty catalog repository
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

var (
	_ outbound.CatalogRepository = (*CatalogRepository)(nil)
	_ outbound.CatalogWriter     = (*CatalogRepository)(nil)
)

// Load returns the current catalog
func (r *CatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.current == nil {
		return nil, ErrCatalogNotLoaded
	}
	return r.current, nil
}

// Replace validates dishes and swaps them in
func (r *CatalogRepository) Replace(ctx context.Context, dishes []catalog.Dish) error {
	next, err := catalog.NewCatalog(dishes)
	if err != nil {
		return err
	}

	r.mutex.Lock()
	r.current = next
	r.mutex.Unlock()
	return nil
}
