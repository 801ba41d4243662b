package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
)

func mustLot(t *testing.T, id entities.LotID, productID entities.ProductID, quantity, cost string, acquired time.Time) *entities.InventoryLot {
	t.Helper()
	lot, err := entities.NewInventoryLot(id, productID,
		decimal.RequireFromString(quantity), decimal.RequireFromString(cost), acquired)
	if err != nil {
		t.Fatalf("Failed to create lot %s: %v", id, err)
	}
	return lot
}

func TestLotRepository_SaveAndLotsFor_FIFOOrder(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	newer := mustLot(t, "LOT-B", "ribbon-red", "100", "0.15", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	older := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	// Saved newest-first; reads must still come back oldest-first.
	if err := repo.SaveLot(ctx, newer); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}
	if err := repo.SaveLot(ctx, older); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	lots, err := repo.LotsFor(ctx, "ribbon-red")
	if err != nil {
		t.Fatalf("Failed to get lots: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("Expected 2 lots, got %d", len(lots))
	}
	if lots[0].ID != "LOT-A" || lots[1].ID != "LOT-B" {
		t.Errorf("Expected FIFO order [LOT-A LOT-B], got [%s %s]", lots[0].ID, lots[1].ID)
	}
}

func TestLotRepository_SameDateTieBreaksByCreationOrder(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()
	acquired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		lot := mustLot(t, entities.LotID(fmt.Sprintf("LOT-%d", i)), "ribbon-red", "10", "0.10", acquired)
		if err := repo.SaveLot(ctx, lot); err != nil {
			t.Fatalf("Failed to save lot: %v", err)
		}
	}

	lots, err := repo.LotsFor(ctx, "ribbon-red")
	if err != nil {
		t.Fatalf("Failed to get lots: %v", err)
	}
	for i, lot := range lots {
		expected := entities.LotID(fmt.Sprintf("LOT-%d", i+1))
		if lot.ID != expected {
			t.Errorf("Position %d: expected %s, got %s", i, expected, lot.ID)
		}
	}
}

func TestLotRepository_DustFilteredOut(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	dusty := mustLot(t, "LOT-DUST", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	live := mustLot(t, "LOT-LIVE", "ribbon-red", "50", "0.10", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, dusty); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}
	if err := repo.SaveLot(ctx, live); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	// Drain the first lot down to sub-threshold dust.
	err := repo.ApplyConsumption(ctx, []entities.LotConsumption{{
		LotID:                "LOT-DUST",
		QuantityConsumedBase: decimal.RequireFromString("99.9995"),
		RemainingInLotBase:   decimal.RequireFromString("0.0005"),
		UnitCost:             decimal.RequireFromString("0.10"),
		LotVersion:           1,
	}})
	if err != nil {
		t.Fatalf("Failed to apply consumption: %v", err)
	}

	lots, err := repo.LotsFor(ctx, "ribbon-red")
	if err != nil {
		t.Fatalf("Failed to get lots: %v", err)
	}
	if len(lots) != 1 || lots[0].ID != "LOT-LIVE" {
		t.Fatalf("Expected only LOT-LIVE, got %d lots", len(lots))
	}

	total, err := repo.TotalRemaining(ctx, "ribbon-red")
	if err != nil {
		t.Fatalf("Failed to total remaining: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected total 50 (dust excluded), got %s", total)
	}
}

func TestLotRepository_LotsForReturnsSnapshots(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	lot := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, lot); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	lots, _ := repo.LotsFor(ctx, "ribbon-red")
	lots[0].QuantityRemaining = decimal.Zero

	fresh, _ := repo.LotsFor(ctx, "ribbon-red")
	if len(fresh) != 1 || !fresh[0].QuantityRemaining.Equal(decimal.NewFromInt(100)) {
		t.Error("Mutating a returned lot must not touch storage")
	}
}

func TestLotRepository_ApplyConsumption(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	lot := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, lot); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	err := repo.ApplyConsumption(ctx, []entities.LotConsumption{{
		LotID:                "LOT-A",
		QuantityConsumedBase: decimal.NewFromInt(30),
		RemainingInLotBase:   decimal.NewFromInt(70),
		UnitCost:             decimal.RequireFromString("0.10"),
		LotVersion:           1,
	}})
	if err != nil {
		t.Fatalf("Failed to apply consumption: %v", err)
	}

	lots, _ := repo.LotsFor(ctx, "ribbon-red")
	if !lots[0].QuantityRemaining.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected remaining 70, got %s", lots[0].QuantityRemaining)
	}
	if lots[0].Version != 2 {
		t.Errorf("Expected version bump to 2, got %d", lots[0].Version)
	}
}

func TestLotRepository_ApplyConsumption_StaleVersionConflict(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	first := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	second := mustLot(t, "LOT-B", "ribbon-red", "100", "0.15", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, first); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}
	if err := repo.SaveLot(ctx, second); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	// First entry is current, second carries a stale version: the whole
	// batch must fail and neither lot may change.
	err := repo.ApplyConsumption(ctx, []entities.LotConsumption{
		{LotID: "LOT-A", RemainingInLotBase: decimal.NewFromInt(0), LotVersion: 1},
		{LotID: "LOT-B", RemainingInLotBase: decimal.NewFromInt(50), LotVersion: 99},
	})
	if !errors.Is(err, entities.ErrConcurrencyConflict) {
		t.Fatalf("Expected ErrConcurrencyConflict, got %v", err)
	}

	lots, _ := repo.LotsFor(ctx, "ribbon-red")
	for _, lot := range lots {
		if !lot.QuantityRemaining.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Lot %s changed despite failed batch: remaining %s", lot.ID, lot.QuantityRemaining)
		}
		if lot.Version != 1 {
			t.Errorf("Lot %s version changed despite failed batch: %d", lot.ID, lot.Version)
		}
	}
}

func TestLotRepository_InTransaction_RollsBackOnError(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	lot := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, lot); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	boom := errors.New("boom")
	err := repo.InTransaction(ctx, func(scoped repositories.LotRepository) error {
		applyErr := scoped.ApplyConsumption(ctx, []entities.LotConsumption{{
			LotID:              "LOT-A",
			RemainingInLotBase: decimal.NewFromInt(10),
			LotVersion:         1,
		}})
		if applyErr != nil {
			t.Fatalf("Failed to apply inside transaction: %v", applyErr)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	lots, _ := repo.LotsFor(ctx, "ribbon-red")
	if !lots[0].QuantityRemaining.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected rollback to restore remaining 100, got %s", lots[0].QuantityRemaining)
	}
}

func TestLotRepository_InTransaction_CommitsOnSuccess(t *testing.T) {
	repo := NewLotRepository()
	ctx := context.Background()

	lot := mustLot(t, "LOT-A", "ribbon-red", "100", "0.10", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := repo.SaveLot(ctx, lot); err != nil {
		t.Fatalf("Failed to save lot: %v", err)
	}

	err := repo.InTransaction(ctx, func(scoped repositories.LotRepository) error {
		return scoped.ApplyConsumption(ctx, []entities.LotConsumption{{
			LotID:              "LOT-A",
			RemainingInLotBase: decimal.NewFromInt(40),
			LotVersion:         1,
		}})
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	lots, _ := repo.LotsFor(ctx, "ribbon-red")
	if !lots[0].QuantityRemaining.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected committed remaining 40, got %s", lots[0].QuantityRemaining)
	}
}

func TestProductCatalog_DimensionOf(t *testing.T) {
	catalog := NewProductCatalog()
	ctx := context.Background()

	product, err := entities.NewProduct("ribbon-red", "Red satin ribbon", entities.Material, entities.Linear)
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	if err := catalog.SaveProduct(ctx, product); err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}

	dimension, err := catalog.DimensionOf(ctx, "ribbon-red")
	if err != nil {
		t.Fatalf("Failed to resolve dimension: %v", err)
	}
	if dimension != entities.Linear {
		t.Errorf("Expected linear, got %v", dimension)
	}

	if _, err := catalog.DimensionOf(ctx, "no-such-product"); !errors.Is(err, entities.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}
