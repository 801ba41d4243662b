package services

import (
	"context"
	"fmt"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
)

// AvailabilityService answers multi-requirement feasibility questions by
// dry-running the consumption engine, without committing anything.
type AvailabilityService struct {
	engine *ConsumptionService
}

// NewAvailabilityService creates a validator over the given engine.
func NewAvailabilityService(engine *ConsumptionService) *AvailabilityService {
	return &AvailabilityService{engine: engine}
}

// Validate dry-runs each requirement independently and collects the
// ones that cannot be satisfied. CanFulfill is true iff none fall short.
//
// Each dry-run sees the full unconsumed ledger: two requirements in the
// same batch drawing on the same product's lots are not netted against
// each other, so results are optimistic for such batches.
func (s *AvailabilityService) Validate(
	ctx context.Context,
	requirements []entities.ConsumptionRequest,
) (*entities.AvailabilityReport, error) {
	report := &entities.AvailabilityReport{
		CanFulfill: true,
		Shortfalls: []entities.Shortfall{},
	}

	for _, req := range requirements {
		req.DryRun = true
		result, err := s.engine.Consume(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to validate requirement for %s: %w", req.ProductID, err)
		}
		if result.Satisfied {
			continue
		}
		report.CanFulfill = false
		report.Shortfalls = append(report.Shortfalls, entities.Shortfall{
			ProductID:      req.ProductID,
			Unit:           req.Unit,
			QuantityNeeded: req.QuantityNeeded,
			Available:      result.Consumed,
			Shortfall:      result.Shortfall,
		})
	}

	return report, nil
}
