package entities

import "errors"

// Closed error taxonomy for the consumption core. Callers match these
// with errors.Is; every propagation site wraps them with context.
//
// Insufficient inventory is deliberately absent: a demand exceeding
// available stock is a normal outcome reported through
// ConsumptionResult.Satisfied, never an error.
var (
	// ErrUnknownUnit indicates a unit string not present in the
	// supported-unit table. Raised before any lot access.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrIncompatibleUnitDimension indicates a recognized unit whose
	// dimension does not match the product's. Raised before any lot access.
	ErrIncompatibleUnitDimension = errors.New("incompatible unit dimension")

	// ErrProductNotFound indicates a product ID the catalog cannot
	// resolve. Raised before any lot access.
	ErrProductNotFound = errors.New("product not found")

	// ErrConcurrencyConflict indicates a write-exclusion violation
	// detected during a mutating walk. The call is rolled back entirely
	// and is safe to retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
