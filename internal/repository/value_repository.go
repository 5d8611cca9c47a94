package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// ValueRepository provides data access methods for the current_value singleton
// and its value_audit log.
type ValueRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewValueRepository creates a new ValueRepository with the provided database connection.
func NewValueRepository(db *sql.DB) *ValueRepository {
	return &ValueRepository{db: db}
}

// WithTx returns a new ValueRepository scoped to the provided transaction.
func (r *ValueRepository) WithTx(tx *sql.Tx) *ValueRepository {
	return &ValueRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ValueRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// EnsureCurrentValue creates the singleton row with value 0 if it is missing.
func (r *ValueRepository) EnsureCurrentValue(ctx context.Context, now time.Time) error {
	query := `
		INSERT OR IGNORE INTO current_value (id, value, last_updated, updated_by)
		VALUES (1, 0, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query, formatTimestamp(now), model.ValueReasonManual)
	if err != nil {
		return fmt.Errorf("failed to initialize current value: %w", err)
	}
	return nil
}

// GetCurrentValue reads the singleton. Callers must EnsureCurrentValue first.
func (r *ValueRepository) GetCurrentValue(ctx context.Context) (model.CurrentValue, error) {
	var cv model.CurrentValue
	var lastUpdatedStr string

	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT value, last_updated, updated_by FROM current_value WHERE id = 1`,
	).Scan(&cv.Value, &lastUpdatedStr, &cv.UpdatedBy)
	if err != nil {
		return cv, fmt.Errorf("failed to query current_value table: %w", err)
	}

	if cv.LastUpdated, err = ParseTime(lastUpdatedStr); err != nil {
		return cv, err
	}
	return cv, nil
}

// UpdateCurrentValue overwrites the singleton.
func (r *ValueRepository) UpdateCurrentValue(ctx context.Context, cv model.CurrentValue) error {
	query := `
		UPDATE current_value
		SET value = ?, last_updated = ?, updated_by = ?
		WHERE id = 1
	`
	_, err := r.getQuerier().ExecContext(ctx, query, cv.Value, formatTimestamp(cv.LastUpdated), cv.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update current value: %w", err)
	}
	return nil
}

// InsertAudit appends an entry to the value audit log.
func (r *ValueRepository) InsertAudit(ctx context.Context, a model.ValueAudit) error {
	query := `
		INSERT INTO value_audit (id, operation, amount, previous_value, new_value, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.Operation,
		a.Amount,
		a.PreviousValue,
		a.NewValue,
		a.Reason,
		formatTimestamp(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert value audit: %w", err)
	}
	return nil
}

// GetAudit returns audit entries matching filters, newest first unless SortDir is "asc".
// A Limit of zero or less returns every match.
func (r *ValueRepository) GetAudit(ctx context.Context, filters model.ValueAuditFilters) ([]model.ValueAudit, error) {
	query := `
		SELECT id, operation, amount, previous_value, new_value, reason, created_at
		FROM value_audit
		WHERE 1 = 1
	`
	args := []any{}

	if len(filters.Reasons) > 0 {
		query += ` AND reason IN (` + placeholders(len(filters.Reasons)) + `)`
		for _, reason := range filters.Reasons {
			args = append(args, reason)
		}
	}
	if len(filters.Operations) > 0 {
		query += ` AND operation IN (` + placeholders(len(filters.Operations)) + `)`
		for _, op := range filters.Operations {
			args = append(args, op)
		}
	}
	if filters.StartDate != nil {
		query += ` AND created_at >= ?`
		args = append(args, formatTimestamp(*filters.StartDate))
	}
	if filters.EndDate != nil {
		query += ` AND created_at <= ?`
		args = append(args, formatTimestamp(*filters.EndDate))
	}

	if filters.SortDir == "asc" {
		query += ` ORDER BY created_at ASC, rowid ASC`
	} else {
		query += ` ORDER BY created_at DESC, rowid DESC`
	}
	if filters.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filters.Limit)
	}

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query value_audit table: %w", err)
	}
	defer rows.Close()

	entries := []model.ValueAudit{}
	for rows.Next() {
		var a model.ValueAudit
		var createdAtStr string

		err := rows.Scan(&a.ID, &a.Operation, &a.Amount, &a.PreviousValue, &a.NewValue, &a.Reason, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan value_audit table results: %w", err)
		}
		if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating value_audit table: %w", err)
	}

	return entries, nil
}
