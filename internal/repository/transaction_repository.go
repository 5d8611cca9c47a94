package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// TransactionRepository provides data access methods for the fund_transaction table.
// Rows are append-only: every invest and withdraw writes exactly one record.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `
	id, user_id, amount, units, nav_value, type, processed_by, status, created_at, updated_at`

// InsertTransaction appends a record to the fund transaction log.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.TransactionRecord) error {
	query := `
		INSERT INTO fund_transaction (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Amount,
		t.Units,
		t.NAVValue,
		t.Type,
		t.ProcessedBy,
		t.Status,
		formatTimestamp(t.CreatedAt),
		formatTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a single record.
// Returns ErrTransactionNotFound if it does not exist.
func (r *TransactionRepository) GetTransaction(ctx context.Context, transactionID string) (model.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM fund_transaction WHERE id = ?`

	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, query, transactionID))
	if isNoRows(err) {
		return model.TransactionRecord{}, apperrors.ErrTransactionNotFound
	}
	return t, err
}

// GetTransactionsByUser retrieves a user's records created between startDate and
// endDate inclusive, oldest first. A zero bound leaves that side open.
func (r *TransactionRepository) GetTransactionsByUser(
	ctx context.Context,
	userID string,
	startDate, endDate time.Time,
) ([]model.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM fund_transaction WHERE user_id = ?`
	args := []any{userID}

	if !startDate.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, formatTimestamp(startDate))
	}
	if !endDate.IsZero() {
		// endDate is a calendar day; include all of it.
		query += ` AND created_at < ?`
		args = append(args, formatTimestamp(endDate.AddDate(0, 0, 1)))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.TransactionRecord{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund_transaction table: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row rowScanner) (model.TransactionRecord, error) {
	var t model.TransactionRecord
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Amount,
		&t.Units,
		&t.NAVValue,
		&t.Type,
		&t.ProcessedBy,
		&t.Status,
		&createdAtStr,
		&updatedAtStr,
	)
	if isNoRows(err) {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan fund_transaction table results: %w", err)
	}

	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return t, err
	}
	if t.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return t, err
	}
	return t, nil
}
