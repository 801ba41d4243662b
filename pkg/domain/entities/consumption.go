package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitQuantity pairs a magnitude with the unit string it is expressed
// in. Ephemeral; never persisted.
type UnitQuantity struct {
	Magnitude decimal.Decimal
	Unit      string
}

// ConsumptionRequest describes one demand against a product's lots.
type ConsumptionRequest struct {
	ProductID      ProductID
	QuantityNeeded decimal.Decimal
	Unit           string

	// ContextReference is an opaque audit tag supplied by the caller
	// and echoed on the result.
	ContextReference string

	// DryRun performs the identical computation without mutating any lot.
	DryRun bool
}

// LotConsumption is one breakdown entry: what a single lot contributed
// to a consumption, in base units.
type LotConsumption struct {
	LotID                LotID
	QuantityConsumedBase decimal.Decimal
	RemainingInLotBase   decimal.Decimal
	UnitCost             decimal.Decimal
	AcquiredAt           time.Time

	// LotVersion is the version the walk observed; the ledger's
	// compare-and-swap write checks against it.
	LotVersion int64
}

// ConsumptionResult reports the outcome of one consumption walk.
// Consumed and Shortfall are in the caller's requested unit; the
// breakdown is in base units, in the order lots were touched.
type ConsumptionResult struct {
	ProductID        ProductID
	ContextReference string
	Consumed         decimal.Decimal
	Shortfall        decimal.Decimal
	Satisfied        bool
	TotalCost        decimal.Decimal
	Breakdown        []LotConsumption
}

// Shortfall reports one unsatisfiable requirement from a validation
// batch. Quantities are in the requirement's requested unit.
type Shortfall struct {
	ProductID      ProductID
	Unit           string
	QuantityNeeded decimal.Decimal
	Available      decimal.Decimal
	Shortfall      decimal.Decimal
}

// AvailabilityReport is the result of validating a list of requirements.
type AvailabilityReport struct {
	CanFulfill bool
	Shortfalls []Shortfall
}
