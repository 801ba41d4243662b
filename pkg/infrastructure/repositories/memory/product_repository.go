package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
)

// ProductCatalog provides in-memory product storage.
type ProductCatalog struct {
	mu       sync.RWMutex
	products map[entities.ProductID]*entities.Product
}

// NewProductCatalog creates a new in-memory product catalog
func NewProductCatalog() *ProductCatalog {
	return &ProductCatalog{
		products: make(map[entities.ProductID]*entities.Product),
	}
}

// Verify interface compliance
var _ repositories.ProductCatalog = (*ProductCatalog)(nil)

// SaveProduct stores a copy of the product. Seeding surface for tests
// and the catalog collaborator; not part of the core interface.
func (c *ProductCatalog) SaveProduct(ctx context.Context, product *entities.Product) error {
	if product == nil {
		return fmt.Errorf("product cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *product
	c.products[product.ID] = &copied
	return nil
}

// GetProduct returns a copy of the stored product.
func (c *ProductCatalog) GetProduct(ctx context.Context, productID entities.ProductID) (*entities.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, productID)
	}
	copied := *product
	return &copied, nil
}

// DimensionOf resolves the product's canonical dimension.
func (c *ProductCatalog) DimensionOf(ctx context.Context, productID entities.ProductID) (entities.Dimension, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[productID]
	if !ok {
		return entities.DimensionUnknown, fmt.Errorf("%w: %s", entities.ErrProductNotFound, productID)
	}
	return product.Dimension, nil
}
