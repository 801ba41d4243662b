package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
)

// ProductCatalog persists the catalog view this core consumes.
type ProductCatalog struct {
	db *sqlx.DB
}

// NewProductCatalog creates a product catalog over an opened database.
func NewProductCatalog(db *sqlx.DB) *ProductCatalog {
	return &ProductCatalog{db: db}
}

// Verify interface compliance
var _ repositories.ProductCatalog = (*ProductCatalog)(nil)

type productRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Kind      string `db:"kind"`
	Dimension string `db:"dimension"`
}

// SaveProduct upserts a product. Seeding surface for tests and the
// catalog collaborator; not part of the core interface.
func (c *ProductCatalog) SaveProduct(ctx context.Context, product *entities.Product) error {
	if product == nil {
		return fmt.Errorf("product cannot be nil")
	}
	query := `INSERT INTO products (id, name, kind, dimension)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			dimension = excluded.dimension`
	_, err := c.db.ExecContext(ctx, query,
		string(product.ID), product.Name, product.Kind.String(), product.Dimension.String())
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.ID, err)
	}
	return nil
}

// GetProduct returns the stored product.
func (c *ProductCatalog) GetProduct(ctx context.Context, productID entities.ProductID) (*entities.Product, error) {
	var row productRow
	query := `SELECT id, name, kind, dimension FROM products WHERE id = ?`
	if err := c.db.GetContext(ctx, &row, query, string(productID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}

	kind, err := entities.ParseProductKind(row.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product %s: %w", productID, err)
	}
	dimension, err := entities.ParseDimension(row.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product %s: %w", productID, err)
	}

	return &entities.Product{
		ID:        entities.ProductID(row.ID),
		Name:      row.Name,
		Kind:      kind,
		Dimension: dimension,
	}, nil
}

// DimensionOf resolves the product's canonical dimension.
func (c *ProductCatalog) DimensionOf(ctx context.Context, productID entities.ProductID) (entities.Dimension, error) {
	var stored string
	query := `SELECT dimension FROM products WHERE id = ?`
	if err := c.db.GetContext(ctx, &stored, query, string(productID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.DimensionUnknown, fmt.Errorf("%w: %s", entities.ErrProductNotFound, productID)
		}
		return entities.DimensionUnknown, fmt.Errorf("failed to resolve dimension for %s: %w", productID, err)
	}

	dimension, err := entities.ParseDimension(stored)
	if err != nil {
		return entities.DimensionUnknown, fmt.Errorf("failed to parse dimension for %s: %w", productID, err)
	}
	return dimension, nil
}
