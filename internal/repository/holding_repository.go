package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// HoldingRepository provides data access methods for the holding, lot,
// holding_transaction and lot_sale tables.
// Lots are always returned in FIFO order: purchase date, then insertion order.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a new HoldingRepository scoped to the provided transaction.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// remaining_units is derived from the two stored counters and never stored itself.
const holdingColumns = `
	id, user_id, instrument, total_units_purchased, total_units_sold,
	total_units_purchased - total_units_sold AS remaining_units,
	avg_price, total_investment, total_realized, final_profit_loss,
	status, version, created_at, updated_at, closed_at`

// =============================================================================
// HOLDINGS
// =============================================================================

// GetHolding retrieves a holding by ID.
// Returns ErrHoldingNotFound if it does not exist.
func (r *HoldingRepository) GetHolding(ctx context.Context, holdingID string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE id = ?`

	h, err := scanHolding(r.getQuerier().QueryRowContext(ctx, query, holdingID))
	if isNoRows(err) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	return h, err
}

// GetActiveHolding retrieves the open holding of a user in an instrument.
// Returns ErrHoldingNotFound if the user has no active holding in it.
func (r *HoldingRepository) GetActiveHolding(ctx context.Context, userID, instrument string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE user_id = ? AND instrument = ? AND status = ?`

	h, err := scanHolding(r.getQuerier().QueryRowContext(ctx, query, userID, instrument, model.HoldingStatusActive))
	if isNoRows(err) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	return h, err
}

// GetHoldingsByUser retrieves a user's holdings, optionally filtered by status.
// An empty status returns holdings in every state.
func (r *HoldingRepository) GetHoldingsByUser(ctx context.Context, userID string, status model.HoldingStatus) ([]model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE user_id = ?`
	args := []any{userID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// InsertHolding creates a holding. A second active holding for the same
// user and instrument violates ux_holding_active and returns ErrDuplicateEntry.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	query := `
		INSERT INTO holding (
			id, user_id, instrument, total_units_purchased, total_units_sold,
			avg_price, total_investment, total_realized, status, version, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		h.ID,
		h.UserID,
		h.Instrument,
		h.TotalUnitsPurchased,
		h.TotalUnitsSold,
		h.AvgPrice,
		h.TotalInvestment,
		h.TotalRealized,
		h.Status,
		h.Version,
		formatTimestamp(h.CreatedAt),
		formatTimestamp(h.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("active holding for %s: %w", h.Instrument, apperrors.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// UpdateHoldingPurchase writes the merged purchase totals of an active holding.
// The write only applies if the holding is still at expectedVersion and active;
// otherwise ErrConcurrentUpdate is returned.
func (r *HoldingRepository) UpdateHoldingPurchase(ctx context.Context, h *model.Holding, expectedVersion int64) error {
	query := `
		UPDATE holding
		SET total_units_purchased = ?, total_investment = ?, avg_price = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND status = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		h.TotalUnitsPurchased,
		h.TotalInvestment,
		h.AvgPrice,
		formatTimestamp(h.UpdatedAt),
		h.ID,
		expectedVersion,
		model.HoldingStatusActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	if err := checkAffected(result, apperrors.ErrConcurrentUpdate); err != nil {
		return err
	}
	h.Version = expectedVersion + 1
	return nil
}

// UpdateHoldingSale writes the sale totals and status of a holding.
// The write is a compare-and-swap on version and requires the stored remaining
// units to still cover unitsSold, so two concurrent sells cannot oversell.
func (r *HoldingRepository) UpdateHoldingSale(ctx context.Context, h *model.Holding, expectedVersion int64, unitsSold float64) error {
	var closedAt any
	if h.ClosedAt != nil {
		closedAt = formatTimestamp(*h.ClosedAt)
	}

	query := `
		UPDATE holding
		SET total_units_sold = ?, total_realized = ?, final_profit_loss = ?, status = ?,
			closed_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND status = ?
			AND total_units_purchased - total_units_sold >= ? - ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		h.TotalUnitsSold,
		h.TotalRealized,
		floatArg(h.FinalProfitLoss),
		h.Status,
		closedAt,
		formatTimestamp(h.UpdatedAt),
		h.ID,
		expectedVersion,
		model.HoldingStatusActive,
		unitsSold,
		model.UnitEpsilon,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	if err := checkAffected(result, apperrors.ErrConcurrentUpdate); err != nil {
		return err
	}
	h.Version = expectedVersion + 1
	h.RemainingUnits = h.TotalUnitsPurchased - h.TotalUnitsSold
	return nil
}

func scanHolding(row rowScanner) (model.Holding, error) {
	var h model.Holding
	var finalPL sql.NullFloat64
	var createdAtStr, updatedAtStr string
	var closedAtStr sql.NullString

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Instrument,
		&h.TotalUnitsPurchased,
		&h.TotalUnitsSold,
		&h.RemainingUnits,
		&h.AvgPrice,
		&h.TotalInvestment,
		&h.TotalRealized,
		&finalPL,
		&h.Status,
		&h.Version,
		&createdAtStr,
		&updatedAtStr,
		&closedAtStr,
	)
	if isNoRows(err) {
		return h, err
	}
	if err != nil {
		return h, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	h.FinalProfitLoss = nullFloat(finalPL)
	if h.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return h, err
	}
	if h.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return h, err
	}
	if h.ClosedAt, err = parseNullTime(closedAtStr); err != nil {
		return h, err
	}
	return h, nil
}

// =============================================================================
// LOTS
// =============================================================================

const lotColumns = `
	id, holding_id, user_id, instrument, purchase_rate, purchase_date,
	units_purchased, units_sold, selling_price, selling_date,
	partial_profit_loss, final_profit_loss, status, seq, created_at, updated_at`

// InsertLot creates a lot at the end of its holding's insertion order and sets l.Seq.
func (r *HoldingRepository) InsertLot(ctx context.Context, l *model.Lot) error {
	var seq int64
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM lot WHERE holding_id = ?`, l.HoldingID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate lot sequence: %w", err)
	}

	query := `
		INSERT INTO lot (` + lotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		l.ID,
		l.HoldingID,
		l.UserID,
		l.Instrument,
		l.PurchaseRate,
		formatDate(l.PurchaseDate),
		l.UnitsPurchased,
		l.UnitsSold,
		floatArg(l.SellingPrice),
		dateArg(l.SellingDate),
		l.PartialProfitLoss,
		floatArg(l.FinalProfitLoss),
		l.Status,
		seq,
		formatTimestamp(l.CreatedAt),
		formatTimestamp(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}
	l.Seq = seq
	return nil
}

// GetOpenLots retrieves the active and partial lots of a holding, oldest purchase first.
func (r *HoldingRepository) GetOpenLots(ctx context.Context, holdingID string) ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE holding_id = ? AND status IN (?, ?)
		ORDER BY purchase_date ASC, seq ASC
	`
	return r.queryLots(ctx, query, holdingID, model.LotStatusActive, model.LotStatusPartial)
}

// GetLots retrieves every lot of a holding in FIFO order.
func (r *HoldingRepository) GetLots(ctx context.Context, holdingID string) ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE holding_id = ?
		ORDER BY purchase_date ASC, seq ASC
	`
	return r.queryLots(ctx, query, holdingID)
}

// GetLot retrieves a single lot.
// Returns ErrLotNotFound if it does not exist.
func (r *HoldingRepository) GetLot(ctx context.Context, lotID string) (model.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lot WHERE id = ?`

	l, err := scanLot(r.getQuerier().QueryRowContext(ctx, query, lotID))
	if isNoRows(err) {
		return model.Lot{}, apperrors.ErrLotNotFound
	}
	return l, err
}

// UpdateLotSale writes the result of consuming part of a lot.
// The write is a compare-and-swap on units_sold; a lot already advanced by
// another writer yields ErrConcurrentUpdate. Sold lots are never written.
func (r *HoldingRepository) UpdateLotSale(ctx context.Context, l *model.Lot, expectedUnitsSold float64) error {
	query := `
		UPDATE lot
		SET units_sold = ?, selling_price = ?, selling_date = ?,
			partial_profit_loss = ?, final_profit_loss = ?, status = ?, updated_at = ?
		WHERE id = ? AND units_sold = ? AND status != ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		l.UnitsSold,
		floatArg(l.SellingPrice),
		dateArg(l.SellingDate),
		l.PartialProfitLoss,
		floatArg(l.FinalProfitLoss),
		l.Status,
		formatTimestamp(l.UpdatedAt),
		l.ID,
		expectedUnitsSold,
		model.LotStatusSold,
	)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	return checkAffected(result, apperrors.ErrConcurrentUpdate)
}

func (r *HoldingRepository) queryLots(ctx context.Context, query string, args ...any) ([]model.Lot, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}

func scanLot(row rowScanner) (model.Lot, error) {
	var l model.Lot
	var purchaseDateStr, createdAtStr, updatedAtStr string
	var sellingPrice, finalPL sql.NullFloat64
	var sellingDateStr sql.NullString

	err := row.Scan(
		&l.ID,
		&l.HoldingID,
		&l.UserID,
		&l.Instrument,
		&l.PurchaseRate,
		&purchaseDateStr,
		&l.UnitsPurchased,
		&l.UnitsSold,
		&sellingPrice,
		&sellingDateStr,
		&l.PartialProfitLoss,
		&finalPL,
		&l.Status,
		&l.Seq,
		&createdAtStr,
		&updatedAtStr,
	)
	if isNoRows(err) {
		return l, err
	}
	if err != nil {
		return l, fmt.Errorf("failed to scan lot table results: %w", err)
	}

	l.SellingPrice = nullFloat(sellingPrice)
	l.FinalProfitLoss = nullFloat(finalPL)
	if l.PurchaseDate, err = ParseTime(purchaseDateStr); err != nil {
		return l, err
	}
	if l.SellingDate, err = parseNullTime(sellingDateStr); err != nil {
		return l, err
	}
	if l.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return l, err
	}
	if l.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return l, err
	}
	return l, nil
}

// =============================================================================
// TRADE LOG
// =============================================================================

// InsertHoldingTransaction appends a buy or sell to a holding's log and sets t.Seq.
func (r *HoldingRepository) InsertHoldingTransaction(ctx context.Context, t *model.HoldingTransaction) error {
	var seq int64
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM holding_transaction WHERE holding_id = ?`, t.HoldingID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate holding transaction sequence: %w", err)
	}

	query := `
		INSERT INTO holding_transaction (id, holding_id, type, units, price, date, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.HoldingID,
		t.Type,
		t.Units,
		t.Price,
		formatDate(t.Date),
		seq,
		formatTimestamp(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding transaction: %w", err)
	}
	t.Seq = seq
	return nil
}

// GetHoldingTransactions retrieves a holding's trade log in insertion order.
func (r *HoldingRepository) GetHoldingTransactions(ctx context.Context, holdingID string) ([]model.HoldingTransaction, error) {
	query := `
		SELECT id, holding_id, type, units, price, date, seq, created_at
		FROM holding_transaction
		WHERE holding_id = ?
		ORDER BY seq ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, holdingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.HoldingTransaction{}
	for rows.Next() {
		var t model.HoldingTransaction
		var dateStr, createdAtStr string

		err := rows.Scan(&t.ID, &t.HoldingID, &t.Type, &t.Units, &t.Price, &dateStr, &t.Seq, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding_transaction table results: %w", err)
		}
		if t.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding_transaction table: %w", err)
	}

	return transactions, nil
}

// InsertLotSale records one lot's share of a sell.
func (r *HoldingRepository) InsertLotSale(ctx context.Context, s *model.LotSale) error {
	query := `
		INSERT INTO lot_sale (id, lot_id, holding_transaction_id, units, price, date, profit_loss, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.LotID,
		s.HoldingTransactionID,
		s.Units,
		s.Price,
		formatDate(s.Date),
		s.ProfitLoss,
		formatTimestamp(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lot sale: %w", err)
	}
	return nil
}

// GetLotSales retrieves the sale history of a lot, oldest first.
func (r *HoldingRepository) GetLotSales(ctx context.Context, lotID string) ([]model.LotSale, error) {
	query := `
		SELECT id, lot_id, holding_transaction_id, units, price, date, profit_loss, created_at
		FROM lot_sale
		WHERE lot_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot_sale table: %w", err)
	}
	defer rows.Close()

	sales := []model.LotSale{}
	for rows.Next() {
		var s model.LotSale
		var dateStr, createdAtStr string

		err := rows.Scan(&s.ID, &s.LotID, &s.HoldingTransactionID, &s.Units, &s.Price, &dateStr, &s.ProfitLoss, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot_sale table results: %w", err)
		}
		if s.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot_sale table: %w", err)
	}

	return sales, nil
}
