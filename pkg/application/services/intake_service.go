package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/units"
)

// PurchaseRecord describes one recorded purchase transaction as the
// purchase-recording collaborator hands it over.
type PurchaseRecord struct {
	ProductID       entities.ProductID
	Packages        decimal.Decimal // number of packages bought
	PackageSize     decimal.Decimal // size of one package, in PackageUnit
	PackageUnit     string
	PricePerPackage decimal.Decimal
	PurchasedAt     time.Time
	Location        string
	Notes           string
}

// IntakeService derives inventory lots from recorded purchases: exactly
// one lot per purchase, with quantity_purchased = packages × package
// size converted to base units, cost_per_base_unit from the package
// price, and acquired_at from the purchase date. It is the one
// sanctioned lot-creation path.
type IntakeService struct {
	catalog repositories.ProductCatalog
	lots    repositories.LotRepository
}

// NewIntakeService creates an intake service over the provided catalog
// and ledger.
func NewIntakeService(
	catalog repositories.ProductCatalog,
	lots repositories.LotRepository,
) *IntakeService {
	return &IntakeService{
		catalog: catalog,
		lots:    lots,
	}
}

// RecordPurchase converts the purchase into a lot and persists it.
func (s *IntakeService) RecordPurchase(
	ctx context.Context,
	rec PurchaseRecord,
) (*entities.InventoryLot, error) {
	if !rec.Packages.IsPositive() {
		return nil, fmt.Errorf("package count must be positive, got %s", rec.Packages)
	}
	if !rec.PackageSize.IsPositive() {
		return nil, fmt.Errorf("package size must be positive, got %s", rec.PackageSize)
	}
	if rec.PricePerPackage.IsNegative() {
		return nil, fmt.Errorf("package price cannot be negative, got %s", rec.PricePerPackage)
	}

	dimension, err := s.catalog.DimensionOf(ctx, rec.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dimension for %s: %w", rec.ProductID, err)
	}

	sizeBase, err := units.ToBase(rec.PackageSize, rec.PackageUnit, dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to convert package size for %s: %w", rec.ProductID, err)
	}

	quantityBase := sizeBase.Mul(rec.Packages)
	costPerBase := decimal.Zero
	if quantityBase.IsPositive() {
		costPerBase = rec.PricePerPackage.Mul(rec.Packages).Div(quantityBase)
	}

	lot, err := entities.NewInventoryLot(
		entities.NewLotID(),
		rec.ProductID,
		quantityBase,
		costPerBase,
		rec.PurchasedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lot for %s: %w", rec.ProductID, err)
	}
	lot.Location = rec.Location
	lot.Notes = rec.Notes

	if err := s.lots.SaveLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot for %s: %w", rec.ProductID, err)
	}
	return lot, nil
}
