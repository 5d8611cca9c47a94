package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// AccountRepository provides data access methods for the account table.
// It handles the per-user unit and invested-amount balances of the pooled fund.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a new AccountRepository scoped to the provided transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AccountRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const accountColumns = `id, user_id, invested_amount, units, created_at, updated_at`

// InsertAccount creates a zero-balance account.
// Returns ErrDuplicateEntry if the user already has one.
func (r *AccountRepository) InsertAccount(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO account (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.InvestedAmount,
		a.Units,
		formatTimestamp(a.CreatedAt),
		formatTimestamp(a.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("account for user %s: %w", a.UserID, apperrors.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccountByUserID retrieves the account of a user.
// Returns ErrAccountNotFound if the user has no account.
func (r *AccountRepository) GetAccountByUserID(ctx context.Context, userID string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE user_id = ?`

	a, err := scanAccount(r.getQuerier().QueryRowContext(ctx, query, userID))
	if isNoRows(err) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// GetAccounts retrieves all accounts ordered by creation time.
func (r *AccountRepository) GetAccounts(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account ORDER BY created_at ASC, id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// IncrementBalances atomically adds to the invested amount and units of an account.
// Used for subscriptions, where the deltas are always positive.
func (r *AccountRepository) IncrementBalances(ctx context.Context, userID string, amount, units float64, now time.Time) error {
	query := `
		UPDATE account
		SET invested_amount = invested_amount + ?, units = units + ?, updated_at = ?
		WHERE user_id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, amount, units, formatTimestamp(now), userID)
	if err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return checkAffected(result, apperrors.ErrAccountNotFound)
}

// CompareAndSetBalances replaces both balances only if units still equal expectedUnits.
// Returns ErrConcurrentUpdate when another writer changed the account first.
func (r *AccountRepository) CompareAndSetBalances(
	ctx context.Context,
	userID string,
	expectedUnits, investedAmount, units float64,
	now time.Time,
) error {
	query := `
		UPDATE account
		SET invested_amount = ?, units = ?, updated_at = ?
		WHERE user_id = ? AND units = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, investedAmount, units, formatTimestamp(now), userID, expectedUnits)
	if err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return checkAffected(result, apperrors.ErrConcurrentUpdate)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.InvestedAmount,
		&a.Units,
		&createdAtStr,
		&updatedAtStr,
	)
	if isNoRows(err) {
		return a, err
	}
	if err != nil {
		return a, fmt.Errorf("failed to scan account table results: %w", err)
	}

	if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return a, err
	}
	if a.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return a, err
	}
	return a, nil
}
