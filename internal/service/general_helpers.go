package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// withTx runs fn inside a database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
//
// The connection pool may hold a single connection (in-memory databases), so fn
// must only touch the database through tx.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// processedByOrDefault returns the trimmed actor name, or fallback when it is empty.
func processedByOrDefault(processedBy, fallback string) string {
	if p := strings.TrimSpace(processedBy); p != "" {
		return p
	}
	return fallback
}

// parseDate parses a calendar date in "2006-01-02" form.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
