package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// NAVRepository provides data access methods for the nav_entry table.
// There is at most one entry per calendar date.
type NAVRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewNAVRepository creates a new NAVRepository with the provided database connection.
func NewNAVRepository(db *sql.DB) *NAVRepository {
	return &NAVRepository{db: db}
}

// WithTx returns a new NAVRepository scoped to the provided transaction.
func (r *NAVRepository) WithTx(tx *sql.Tx) *NAVRepository {
	return &NAVRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *NAVRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const navColumns = `id, date, value, updated_by, created_at, updated_at`

// UpsertForDate writes the entry for e.Date, replacing the value and updated_by
// of an existing entry for that date. The stored row is returned.
func (r *NAVRepository) UpsertForDate(ctx context.Context, e model.NAVEntry) (model.NAVEntry, error) {
	query := `
		INSERT INTO nav_entry (` + navColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			value = excluded.value,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		e.ID,
		formatDate(e.Date),
		e.Value,
		e.UpdatedBy,
		formatTimestamp(e.CreatedAt),
		formatTimestamp(e.UpdatedAt),
	)
	if err != nil {
		return model.NAVEntry{}, fmt.Errorf("failed to upsert nav entry: %w", err)
	}

	return r.GetByDate(ctx, e.Date)
}

// GetByDate retrieves the entry for the calendar day of date.
// Returns ErrNAVEntryNotFound if there is none.
func (r *NAVRepository) GetByDate(ctx context.Context, date time.Time) (model.NAVEntry, error) {
	query := `SELECT ` + navColumns + ` FROM nav_entry WHERE date = ?`

	e, err := scanNAVEntry(r.getQuerier().QueryRowContext(ctx, query, formatDate(date)))
	if isNoRows(err) {
		return model.NAVEntry{}, apperrors.ErrNAVEntryNotFound
	}
	return e, err
}

// GetLatest retrieves the entry with the greatest date.
// Returns ErrNAVEntryNotFound if the table is empty.
func (r *NAVRepository) GetLatest(ctx context.Context) (model.NAVEntry, error) {
	query := `
		SELECT ` + navColumns + `
		FROM nav_entry
		ORDER BY date DESC, updated_at DESC, id DESC
		LIMIT 1
	`

	e, err := scanNAVEntry(r.getQuerier().QueryRowContext(ctx, query))
	if isNoRows(err) {
		return model.NAVEntry{}, apperrors.ErrNAVEntryNotFound
	}
	return e, err
}

// GetHistory retrieves entries between startDate and endDate inclusive, oldest first.
// A zero bound leaves that side of the range open.
func (r *NAVRepository) GetHistory(ctx context.Context, startDate, endDate time.Time) ([]model.NAVEntry, error) {
	query := `SELECT ` + navColumns + ` FROM nav_entry WHERE 1 = 1`
	args := []any{}

	if !startDate.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(startDate))
	}
	if !endDate.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(endDate))
	}
	query += ` ORDER BY date ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.NAVEntry{}
	for rows.Next() {
		e, err := scanNAVEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav_entry table: %w", err)
	}

	return entries, nil
}

func scanNAVEntry(row rowScanner) (model.NAVEntry, error) {
	var e model.NAVEntry
	var dateStr, createdAtStr, updatedAtStr string

	err := row.Scan(&e.ID, &dateStr, &e.Value, &e.UpdatedBy, &createdAtStr, &updatedAtStr)
	if isNoRows(err) {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("failed to scan nav_entry table results: %w", err)
	}

	if e.Date, err = ParseTime(dateStr); err != nil {
		return e, err
	}
	if e.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return e, err
	}
	return e, nil
}
