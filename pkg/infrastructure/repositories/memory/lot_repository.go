package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
)

// LotRepository provides in-memory lot storage, serialized by one store
// mutex. Suitable for tests and preview flows.
type LotRepository struct {
	mu      sync.Mutex
	lots    map[entities.ProductID][]*entities.InventoryLot
	nextSeq int64
}

// NewLotRepository creates a new in-memory lot repository
func NewLotRepository() *LotRepository {
	return &LotRepository{
		lots: make(map[entities.ProductID][]*entities.InventoryLot),
	}
}

// Verify interface compliance
var _ repositories.LotRepository = (*LotRepository)(nil)

// LotsFor returns the product's lots in FIFO order, dust-filtered.
func (r *LotRepository) LotsFor(ctx context.Context, productID entities.ProductID) ([]*entities.InventoryLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lotsForLocked(productID), nil
}

// TotalRemaining sums remaining quantity over the same filtered set.
func (r *LotRepository) TotalRemaining(ctx context.Context, productID entities.ProductID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := decimal.Zero
	for _, lot := range r.lotsForLocked(productID) {
		total = total.Add(lot.QuantityRemaining)
	}
	return total, nil
}

// SaveLot stores a copy of the lot and assigns its Sequence.
func (r *LotRepository) SaveLot(ctx context.Context, lot *entities.InventoryLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLotLocked(lot)
}

// ApplyConsumption decrements the named lots, all-or-nothing on version
// mismatch.
func (r *LotRepository) ApplyConsumption(ctx context.Context, breakdown []entities.LotConsumption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(breakdown)
}

// InTransaction holds the store lock for the whole function and restores
// a snapshot of the lots on error, so the scope is all-or-nothing.
func (r *LotRepository) InTransaction(ctx context.Context, fn func(repositories.LotRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.snapshotLocked()
	if err := fn(&txLotRepository{base: r}); err != nil {
		r.lots = snapshot
		return err
	}
	return nil
}

func (r *LotRepository) lotsForLocked(productID entities.ProductID) []*entities.InventoryLot {
	var available []*entities.InventoryLot
	for _, lot := range r.lots[productID] {
		if lot.QuantityRemaining.LessThan(entities.DustThreshold) {
			continue
		}
		copied := *lot
		available = append(available, &copied)
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].AcquiredAt.Equal(available[j].AcquiredAt) {
			return available[i].Sequence < available[j].Sequence
		}
		return available[i].AcquiredAt.Before(available[j].AcquiredAt)
	})
	return available
}

func (r *LotRepository) saveLotLocked(lot *entities.InventoryLot) error {
	if lot == nil {
		return fmt.Errorf("lot cannot be nil")
	}
	if lot.ID == "" {
		return fmt.Errorf("lot ID cannot be empty")
	}

	stored := *lot
	r.nextSeq++
	stored.Sequence = r.nextSeq
	if stored.Version == 0 {
		stored.Version = 1
	}
	r.lots[stored.ProductID] = append(r.lots[stored.ProductID], &stored)

	lot.Sequence = stored.Sequence
	lot.Version = stored.Version
	return nil
}

func (r *LotRepository) applyLocked(breakdown []entities.LotConsumption) error {
	// Validate every entry before mutating anything.
	targets := make([]*entities.InventoryLot, len(breakdown))
	for i, entry := range breakdown {
		lot := r.findLocked(entry.LotID)
		if lot == nil {
			return fmt.Errorf("lot not found: %s", entry.LotID)
		}
		if lot.Version != entry.LotVersion {
			return fmt.Errorf("%w: lot %s changed since it was read", entities.ErrConcurrencyConflict, entry.LotID)
		}
		if entry.RemainingInLotBase.IsNegative() {
			return fmt.Errorf("remaining quantity for lot %s cannot be negative", entry.LotID)
		}
		targets[i] = lot
	}

	for i, entry := range breakdown {
		targets[i].QuantityRemaining = entry.RemainingInLotBase
		targets[i].Version++
	}
	return nil
}

func (r *LotRepository) findLocked(id entities.LotID) *entities.InventoryLot {
	for _, lots := range r.lots {
		for _, lot := range lots {
			if lot.ID == id {
				return lot
			}
		}
	}
	return nil
}

func (r *LotRepository) snapshotLocked() map[entities.ProductID][]*entities.InventoryLot {
	snapshot := make(map[entities.ProductID][]*entities.InventoryLot, len(r.lots))
	for productID, lots := range r.lots {
		copies := make([]*entities.InventoryLot, len(lots))
		for i, lot := range lots {
			copied := *lot
			copies[i] = &copied
		}
		snapshot[productID] = copies
	}
	return snapshot
}

// txLotRepository is the view handed to InTransaction callbacks; it runs
// against the already-locked base store and joins nested scopes.
type txLotRepository struct {
	base *LotRepository
}

var _ repositories.LotRepository = (*txLotRepository)(nil)

func (t *txLotRepository) LotsFor(ctx context.Context, productID entities.ProductID) ([]*entities.InventoryLot, error) {
	return t.base.lotsForLocked(productID), nil
}

func (t *txLotRepository) TotalRemaining(ctx context.Context, productID entities.ProductID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, lot := range t.base.lotsForLocked(productID) {
		total = total.Add(lot.QuantityRemaining)
	}
	return total, nil
}

func (t *txLotRepository) SaveLot(ctx context.Context, lot *entities.InventoryLot) error {
	return t.base.saveLotLocked(lot)
}

func (t *txLotRepository) ApplyConsumption(ctx context.Context, breakdown []entities.LotConsumption) error {
	return t.base.applyLocked(breakdown)
}

func (t *txLotRepository) InTransaction(ctx context.Context, fn func(repositories.LotRepository) error) error {
	return fn(t)
}
