package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/units"
)

// ConsumptionService implements FIFO lot consumption: given a demand, it
// walks the product's lots oldest-first, decrements remaining quantities
// and accumulates exact cost. Insufficient inventory is a normal outcome
// reported through ConsumptionResult.Satisfied, never an error.
type ConsumptionService struct {
	catalog repositories.ProductCatalog
	lots    repositories.LotRepository
}

// NewConsumptionService creates a consumption service over the provided
// catalog and ledger.
func NewConsumptionService(
	catalog repositories.ProductCatalog,
	lots repositories.LotRepository,
) *ConsumptionService {
	return &ConsumptionService{
		catalog: catalog,
		lots:    lots,
	}
}

// consumptionPlan carries the pre-flight validation outcome into the walk.
type consumptionPlan struct {
	dimension  entities.Dimension
	neededBase decimal.Decimal
}

// Consume executes one demand against the product's lots. Unit and
// product validation happen before any lot access; a mutating call then
// runs its own transactional scope, so either every touched lot commits
// or none does. Dry runs read a plain snapshot and write nothing.
//
// Use ConsumeWithin to join a caller-owned transactional scope instead.
func (s *ConsumptionService) Consume(
	ctx context.Context,
	req entities.ConsumptionRequest,
) (*entities.ConsumptionResult, error) {
	plan, err := s.preflight(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.DryRun {
		return s.walk(ctx, s.lots, req, plan)
	}

	var result *entities.ConsumptionResult
	err = s.lots.InTransaction(ctx, func(scoped repositories.LotRepository) error {
		var walkErr error
		result, walkErr = s.walk(ctx, scoped, req, plan)
		return walkErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConsumeWithin executes one demand inside a caller-supplied
// transactional scope, so callers can chain several consumptions into
// one atomic unit. The caller owns commit and rollback.
func (s *ConsumptionService) ConsumeWithin(
	ctx context.Context,
	store repositories.LotRepository,
	req entities.ConsumptionRequest,
) (*entities.ConsumptionResult, error) {
	plan, err := s.preflight(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.walk(ctx, store, req, plan)
}

// preflight validates the request with zero side effects: resolve the
// product's dimension, then convert the demand to base units.
func (s *ConsumptionService) preflight(
	ctx context.Context,
	req entities.ConsumptionRequest,
) (consumptionPlan, error) {
	if req.QuantityNeeded.IsNegative() {
		return consumptionPlan{}, fmt.Errorf("quantity needed cannot be negative, got %s", req.QuantityNeeded)
	}

	dimension, err := s.catalog.DimensionOf(ctx, req.ProductID)
	if err != nil {
		return consumptionPlan{}, fmt.Errorf("failed to resolve dimension for %s: %w", req.ProductID, err)
	}

	neededBase, err := units.ToBase(req.QuantityNeeded, req.Unit, dimension)
	if err != nil {
		return consumptionPlan{}, fmt.Errorf("failed to convert demand for %s: %w", req.ProductID, err)
	}

	return consumptionPlan{dimension: dimension, neededBase: neededBase}, nil
}

// walk performs the FIFO consumption against the given ledger scope.
// Cost and quantities accumulate in full decimal precision; rounding is
// left to presentation boundaries owned by the caller.
func (s *ConsumptionService) walk(
	ctx context.Context,
	store repositories.LotRepository,
	req entities.ConsumptionRequest,
	plan consumptionPlan,
) (*entities.ConsumptionResult, error) {
	result := &entities.ConsumptionResult{
		ProductID:        req.ProductID,
		ContextReference: req.ContextReference,
		Consumed:         decimal.Zero,
		Shortfall:        decimal.Zero,
		TotalCost:        decimal.Zero,
		Breakdown:        []entities.LotConsumption{},
	}

	stillNeeded := plan.neededBase
	if stillNeeded.IsZero() {
		result.Satisfied = true
		return result, nil
	}

	lots, err := store.LotsFor(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lots for %s: %w", req.ProductID, err)
	}

	consumedBase := decimal.Zero
	for _, lot := range lots {
		if !stillNeeded.IsPositive() {
			break
		}
		if !lot.QuantityRemaining.IsPositive() {
			continue
		}

		take := stillNeeded
		if take.GreaterThan(lot.QuantityRemaining) {
			take = lot.QuantityRemaining
		}

		consumedBase = consumedBase.Add(take)
		stillNeeded = stillNeeded.Sub(take)
		result.TotalCost = result.TotalCost.Add(take.Mul(lot.CostPerBaseUnit))
		result.Breakdown = append(result.Breakdown, entities.LotConsumption{
			LotID:                lot.ID,
			QuantityConsumedBase: take,
			RemainingInLotBase:   lot.QuantityRemaining.Sub(take),
			UnitCost:             lot.CostPerBaseUnit,
			AcquiredAt:           lot.AcquiredAt,
			LotVersion:           lot.Version,
		})
	}

	if !req.DryRun && len(result.Breakdown) > 0 {
		if err := store.ApplyConsumption(ctx, result.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to commit consumption for %s: %w", req.ProductID, err)
		}
	}

	consumed, err := units.FromBase(consumedBase, req.Unit, plan.dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to convert consumed quantity for %s: %w", req.ProductID, err)
	}
	shortfall, err := units.FromBase(stillNeeded, req.Unit, plan.dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to convert shortfall for %s: %w", req.ProductID, err)
	}

	result.Consumed = consumed
	result.Shortfall = shortfall
	result.Satisfied = stillNeeded.IsZero()
	return result, nil
}
