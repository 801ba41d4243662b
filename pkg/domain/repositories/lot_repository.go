package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
)

// LotRepository provides access to persisted purchase lots. Lot creation
// belongs to the purchase-recording side; the consumption engine is the
// only writer of remaining quantities, and it writes exclusively through
// ApplyConsumption.
type LotRepository interface {
	// LotsFor returns the product's lots ascending by
	// (AcquiredAt, Sequence), excluding lots whose remaining quantity is
	// below entities.DustThreshold. The returned lots are snapshots;
	// mutating them does not touch storage.
	LotsFor(ctx context.Context, productID entities.ProductID) ([]*entities.InventoryLot, error)

	// TotalRemaining sums QuantityRemaining over the same filtered set.
	TotalRemaining(ctx context.Context, productID entities.ProductID) (decimal.Decimal, error)

	// SaveLot persists a newly created lot and assigns its Sequence.
	SaveLot(ctx context.Context, lot *entities.InventoryLot) error

	// ApplyConsumption decrements the lots named in the breakdown,
	// all-or-nothing. A version mismatch on any lot fails the whole
	// batch with entities.ErrConcurrencyConflict and leaves every lot
	// untouched.
	ApplyConsumption(ctx context.Context, breakdown []entities.LotConsumption) error

	// InTransaction runs fn against a repository bound to one
	// transactional scope, committing on nil and rolling back on error.
	// A repository already bound to a scope joins it instead of nesting.
	InTransaction(ctx context.Context, fn func(LotRepository) error) error
}
