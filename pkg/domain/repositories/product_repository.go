package repositories

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
)

// ProductCatalog is the catalog collaborator view this core consumes.
// Catalog CRUD lives outside the core; only dimension resolution is
// needed here.
type ProductCatalog interface {
	// DimensionOf resolves the product's canonical dimension, used to
	// validate incoming units. Returns entities.ErrProductNotFound when
	// the ID is unresolvable.
	DimensionOf(ctx context.Context, productID entities.ProductID) (entities.Dimension, error)
}
