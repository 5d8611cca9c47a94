package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// TotalsRepository provides data access methods for the totals cache.
type TotalsRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTotalsRepository creates a new TotalsRepository with the provided database connection.
func NewTotalsRepository(db *sql.DB) *TotalsRepository {
	return &TotalsRepository{db: db}
}

// WithTx returns a new TotalsRepository scoped to the provided transaction.
func (r *TotalsRepository) WithTx(tx *sql.Tx) *TotalsRepository {
	return &TotalsRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TotalsRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Recompute replaces the cache with the sums over every account in one statement,
// so the read of the accounts and the write of the cache see the same snapshot.
func (r *TotalsRepository) Recompute(ctx context.Context, now time.Time) error {
	query := `
		INSERT INTO totals (id, total_units, total_investment, updated_at)
		SELECT 1, COALESCE(SUM(units), 0), COALESCE(SUM(invested_amount), 0), ?
		FROM account
		WHERE true
		ON CONFLICT(id) DO UPDATE SET
			total_units = excluded.total_units,
			total_investment = excluded.total_investment,
			updated_at = excluded.updated_at
	`
	if _, err := r.getQuerier().ExecContext(ctx, query, formatTimestamp(now)); err != nil {
		return fmt.Errorf("failed to recompute totals: %w", err)
	}
	return nil
}

// GetTotals reads the cache. The second return is false when it was never computed.
func (r *TotalsRepository) GetTotals(ctx context.Context) (model.Totals, bool, error) {
	var t model.Totals
	var updatedAtStr string

	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT total_units, total_investment, updated_at FROM totals WHERE id = 1`,
	).Scan(&t.TotalUnits, &t.TotalInvestment, &updatedAtStr)
	if isNoRows(err) {
		return t, false, nil
	}
	if err != nil {
		return t, false, fmt.Errorf("failed to query totals table: %w", err)
	}

	if t.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return t, false, err
	}
	return t, true, nil
}
