package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotID uniquely identifies an inventory lot.
type LotID string

// NewLotID returns a fresh random lot identifier.
func NewLotID() LotID {
	return LotID(uuid.NewString())
}

// DustThreshold is the smallest remaining quantity (in base units) a lot
// must hold to count as stocked. Remainders below it are rounding dust
// and are excluded from ledger reads.
var DustThreshold = decimal.New(1, -3) // 0.001 base units

// InventoryLot is one discrete purchased quantity of a product, tracked
// with its own remaining quantity and cost. Exactly one lot exists per
// purchase transaction; lots are created by the purchase-recording side
// and mutated only by the consumption engine, which only ever decrements
// QuantityRemaining.
type InventoryLot struct {
	ID        LotID
	ProductID ProductID

	// QuantityPurchased is immutable, set once at creation, in the
	// product's base unit.
	QuantityPurchased decimal.Decimal

	// QuantityRemaining is monotonically non-increasing, in base units.
	// Invariant: 0 <= QuantityRemaining <= QuantityPurchased.
	QuantityRemaining decimal.Decimal

	// CostPerBaseUnit is an immutable exact-decimal price snapshot.
	// Zero is valid (donated stock).
	CostPerBaseUnit decimal.Decimal

	// AcquiredAt defines FIFO order; ties are broken by Sequence.
	AcquiredAt time.Time

	// Sequence is the lot's creation order, assigned by the ledger on
	// save. Stable tie-break for lots acquired on the same date.
	Sequence int64

	// Version supports optimistic locking on QuantityRemaining updates.
	Version int64

	Location string
	Notes    string
}

// NewInventoryLot creates a validated lot with the full purchased
// quantity remaining. Quantities and cost are in the product's base unit.
// An empty id gets a generated one.
func NewInventoryLot(
	id LotID,
	productID ProductID,
	quantityPurchased decimal.Decimal,
	costPerBaseUnit decimal.Decimal,
	acquiredAt time.Time,
) (*InventoryLot, error) {
	if id == "" {
		id = NewLotID()
	}
	if productID == "" {
		return nil, fmt.Errorf("product ID cannot be empty")
	}
	if quantityPurchased.IsNegative() {
		return nil, fmt.Errorf("purchased quantity cannot be negative, got %s", quantityPurchased)
	}
	if costPerBaseUnit.IsNegative() {
		return nil, fmt.Errorf("cost per base unit cannot be negative, got %s", costPerBaseUnit)
	}
	if acquiredAt.IsZero() {
		return nil, fmt.Errorf("acquisition date cannot be zero")
	}

	return &InventoryLot{
		ID:                id,
		ProductID:         productID,
		QuantityPurchased: quantityPurchased,
		QuantityRemaining: quantityPurchased,
		CostPerBaseUnit:   costPerBaseUnit,
		AcquiredAt:        acquiredAt,
		Version:           1,
	}, nil
}
