package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/repositories"
)

// dustReal approximates entities.DustThreshold for the SQL filter
// predicate only; values handed to callers are always the exact
// text-scanned decimals.
var dustReal, _ = entities.DustThreshold.Float64()

// LotRepository persists inventory lots in SQLite. Writers are
// serialized through optimistic locking: every remaining-quantity update
// is a compare-and-swap on the lot's version.
type LotRepository struct {
	db *sqlx.DB
	tx *sqlx.Tx // non-nil when bound to a caller-owned scope
}

// NewLotRepository creates a lot repository over an opened database.
func NewLotRepository(db *sqlx.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Verify interface compliance
var _ repositories.LotRepository = (*LotRepository)(nil)

func (r *LotRepository) conn() DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

type lotRow struct {
	ID                string          `db:"id"`
	ProductID         string          `db:"product_id"`
	QuantityPurchased decimal.Decimal `db:"quantity_purchased"`
	QuantityRemaining decimal.Decimal `db:"quantity_remaining"`
	CostPerBaseUnit   decimal.Decimal `db:"cost_per_base_unit"`
	AcquiredAt        time.Time       `db:"acquired_at"`
	Sequence          int64           `db:"seq"`
	Version           int64           `db:"version"`
	Location          string          `db:"location"`
	Notes             string          `db:"notes"`
}

func (row lotRow) toEntity() *entities.InventoryLot {
	return &entities.InventoryLot{
		ID:                entities.LotID(row.ID),
		ProductID:         entities.ProductID(row.ProductID),
		QuantityPurchased: row.QuantityPurchased,
		QuantityRemaining: row.QuantityRemaining,
		CostPerBaseUnit:   row.CostPerBaseUnit,
		AcquiredAt:        row.AcquiredAt,
		Sequence:          row.Sequence,
		Version:           row.Version,
		Location:          row.Location,
		Notes:             row.Notes,
	}
}

const lotColumns = `id, product_id, quantity_purchased, quantity_remaining,
	cost_per_base_unit, acquired_at, rowid AS seq, version, location, notes`

// LotsFor returns the product's lots in FIFO order, dust-filtered.
func (r *LotRepository) LotsFor(ctx context.Context, productID entities.ProductID) ([]*entities.InventoryLot, error) {
	var rows []lotRow
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE product_id = ? AND CAST(quantity_remaining AS REAL) >= ?
		ORDER BY acquired_at ASC, rowid ASC`
	if err := r.conn().SelectContext(ctx, &rows, query, string(productID), dustReal); err != nil {
		return nil, fmt.Errorf("failed to select lots for %s: %w", productID, err)
	}

	lots := make([]*entities.InventoryLot, len(rows))
	for i, row := range rows {
		lots[i] = row.toEntity()
	}
	return lots, nil
}

// TotalRemaining sums remaining quantity over the same filtered set,
// exactly. Summation happens in decimal, not SQL, to avoid float drift.
func (r *LotRepository) TotalRemaining(ctx context.Context, productID entities.ProductID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	query := `SELECT quantity_remaining
		FROM inventory_lots
		WHERE product_id = ? AND CAST(quantity_remaining AS REAL) >= ?`
	if err := r.conn().SelectContext(ctx, &amounts, query, string(productID), dustReal); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum remaining for %s: %w", productID, err)
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}

// SaveLot inserts a new lot and assigns its Sequence from the row's
// creation order.
func (r *LotRepository) SaveLot(ctx context.Context, lot *entities.InventoryLot) error {
	if lot == nil {
		return fmt.Errorf("lot cannot be nil")
	}
	if lot.ID == "" {
		return fmt.Errorf("lot ID cannot be empty")
	}
	if lot.Version == 0 {
		lot.Version = 1
	}

	query := `INSERT INTO inventory_lots
		(id, product_id, quantity_purchased, quantity_remaining,
		 cost_per_base_unit, acquired_at, version, location, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.conn().ExecContext(ctx, query,
		string(lot.ID), string(lot.ProductID),
		lot.QuantityPurchased, lot.QuantityRemaining,
		lot.CostPerBaseUnit, lot.AcquiredAt,
		lot.Version, lot.Location, lot.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert lot %s: %w", lot.ID, err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read sequence for lot %s: %w", lot.ID, err)
	}
	lot.Sequence = seq
	return nil
}

// ApplyConsumption decrements the named lots via compare-and-swap on
// their versions. Outside a caller-owned scope it opens its own, so the
// batch is always all-or-nothing.
func (r *LotRepository) ApplyConsumption(ctx context.Context, breakdown []entities.LotConsumption) error {
	if r.tx == nil {
		return r.InTransaction(ctx, func(scoped repositories.LotRepository) error {
			return scoped.ApplyConsumption(ctx, breakdown)
		})
	}

	for _, entry := range breakdown {
		if entry.RemainingInLotBase.IsNegative() {
			return fmt.Errorf("remaining quantity for lot %s cannot be negative", entry.LotID)
		}
		result, err := r.tx.ExecContext(ctx,
			`UPDATE inventory_lots
			 SET quantity_remaining = ?, version = version + 1
			 WHERE id = ? AND version = ?`,
			entry.RemainingInLotBase, string(entry.LotID), entry.LotVersion)
		if err != nil {
			return fmt.Errorf("failed to update lot %s: %w", entry.LotID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update of lot %s: %w", entry.LotID, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: lot %s changed since it was read", entities.ErrConcurrencyConflict, entry.LotID)
		}
	}
	return nil
}

// InTransaction runs fn against a repository bound to a single database
// transaction. A repository already bound to one joins the existing
// scope instead of nesting.
func (r *LotRepository) InTransaction(ctx context.Context, fn func(repositories.LotRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	scoped := &LotRepository{db: r.db, tx: tx}
	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to roll back after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
