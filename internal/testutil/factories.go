package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// storedTimestamp matches the fixed-width layout the repositories write.
const storedTimestamp = "2006-01-02T15:04:05.000000000Z"

// AccountBuilder provides a fluent interface for creating test accounts.
// Balances are written directly, bypassing the ledger, so no transaction
// records, value changes or totals are produced.
//
// Example usage:
//
//	// Empty account for a fresh user
//	account := testutil.NewAccount().Build(t, db)
//
//	// Account that already holds units
//	account := testutil.NewAccount().
//	    WithUserID(userID).
//	    WithBalances(1000, 100).
//	    Build(t, db)
type AccountBuilder struct {
	ID             string
	UserID         string
	InvestedAmount float64
	Units          float64
	CreatedAt      time.Time
}

// NewAccount creates an AccountBuilder with a fresh user and zero balances.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:        MakeID(),
		UserID:    MakeID(),
		CreatedAt: time.Now().UTC(),
	}
}

func (b *AccountBuilder) WithUserID(userID string) *AccountBuilder {
	b.UserID = userID
	return b
}

func (b *AccountBuilder) WithBalances(investedAmount, units float64) *AccountBuilder {
	b.InvestedAmount = investedAmount
	b.Units = units
	return b
}

func (b *AccountBuilder) WithCreatedAt(createdAt time.Time) *AccountBuilder {
	b.CreatedAt = createdAt.UTC()
	return b
}

// Build inserts the account into the database.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	query := `
		INSERT INTO account (id, user_id, invested_amount, units, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	ts := b.CreatedAt.Format(storedTimestamp)
	_, err := db.Exec(query, b.ID, b.UserID, b.InvestedAmount, b.Units, ts, ts)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:             b.ID,
		UserID:         b.UserID,
		InvestedAmount: b.InvestedAmount,
		Units:          b.Units,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.CreatedAt,
	}
}

// CreateAccount creates an empty account for a fresh user.
//
// Example usage:
//
//	account := testutil.CreateAccount(t, db)
func CreateAccount(t *testing.T, db *sql.DB) model.Account {
	t.Helper()
	return NewAccount().Build(t, db)
}

// CreateAccounts creates count empty accounts.
func CreateAccounts(t *testing.T, db *sql.DB, count int) []model.Account {
	t.Helper()

	accounts := make([]model.Account, count)
	for i := range accounts {
		accounts[i] = NewAccount().
			WithCreatedAt(time.Now().Add(time.Duration(i) * time.Second)).
			Build(t, db)
	}
	return accounts
}

// NAVEntryBuilder provides a fluent interface for creating NAV entries.
//
// Example usage:
//
//	testutil.NewNAVEntry(12.5).
//	    WithDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type NAVEntryBuilder struct {
	ID        string
	Date      time.Time
	Value     float64
	UpdatedBy string
}

// NewNAVEntry creates a NAVEntryBuilder for today's date.
func NewNAVEntry(value float64) *NAVEntryBuilder {
	return &NAVEntryBuilder{
		ID:        MakeID(),
		Date:      time.Now(),
		Value:     value,
		UpdatedBy: "manual",
	}
}

func (b *NAVEntryBuilder) WithDate(date time.Time) *NAVEntryBuilder {
	b.Date = date
	return b
}

func (b *NAVEntryBuilder) WithUpdatedBy(updatedBy string) *NAVEntryBuilder {
	b.UpdatedBy = updatedBy
	return b
}

// Build inserts the NAV entry into the database.
func (b *NAVEntryBuilder) Build(t *testing.T, db *sql.DB) model.NAVEntry {
	t.Helper()

	query := `
		INSERT INTO nav_entry (id, date, value, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	ts := now.Format(storedTimestamp)
	_, err := db.Exec(query, b.ID, b.Date.Format("2006-01-02"), b.Value, b.UpdatedBy, ts, ts)
	if err != nil {
		t.Fatalf("Failed to create test nav entry: %v", err)
	}

	return model.NAVEntry{
		ID:        b.ID,
		Date:      b.Date,
		Value:     b.Value,
		UpdatedBy: b.UpdatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCurrentValue writes the fund's current value directly, without an audit entry.
//
// Example usage:
//
//	testutil.SetCurrentValue(t, db, 1500)
func SetCurrentValue(t *testing.T, db *sql.DB, value float64) {
	t.Helper()

	query := `
		INSERT INTO current_value (id, value, last_updated, updated_by)
		VALUES (1, ?, ?, 'manual')
		ON CONFLICT(id) DO UPDATE SET value = excluded.value, last_updated = excluded.last_updated
	`

	if _, err := db.Exec(query, value, time.Now().UTC().Format(storedTimestamp)); err != nil {
		t.Fatalf("Failed to set current value: %v", err)
	}
}

// TransactionRecordBuilder provides a fluent interface for creating invest and
// withdraw records without touching balances.
//
// Example usage:
//
//	testutil.NewTransactionRecord(userID).
//	    WithType(model.TransactionTypeWithdraw).
//	    WithAmount(250, 25).
//	    Build(t, db)
type TransactionRecordBuilder struct {
	ID          string
	UserID      string
	Amount      float64
	Units       float64
	NAVValue    float64
	Type        model.TransactionType
	ProcessedBy string
	CreatedAt   time.Time
}

// NewTransactionRecord creates an invest record of 100 at NAV 10.
func NewTransactionRecord(userID string) *TransactionRecordBuilder {
	return &TransactionRecordBuilder{
		ID:          MakeID(),
		UserID:      userID,
		Amount:      100,
		Units:       10,
		NAVValue:    10,
		Type:        model.TransactionTypeInvest,
		ProcessedBy: "user",
		CreatedAt:   time.Now().UTC(),
	}
}

func (b *TransactionRecordBuilder) WithType(txType model.TransactionType) *TransactionRecordBuilder {
	b.Type = txType
	return b
}

func (b *TransactionRecordBuilder) WithAmount(amount, units float64) *TransactionRecordBuilder {
	b.Amount = amount
	b.Units = units
	return b
}

func (b *TransactionRecordBuilder) WithCreatedAt(createdAt time.Time) *TransactionRecordBuilder {
	b.CreatedAt = createdAt.UTC()
	return b
}

// Build inserts the record into the database.
func (b *TransactionRecordBuilder) Build(t *testing.T, db *sql.DB) model.TransactionRecord {
	t.Helper()

	query := `
		INSERT INTO fund_transaction
			(id, user_id, amount, units, nav_value, type, processed_by, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ts := b.CreatedAt.Format(storedTimestamp)
	_, err := db.Exec(query, b.ID, b.UserID, b.Amount, b.Units, b.NAVValue, b.Type,
		b.ProcessedBy, model.TransactionStatusCompleted, ts, ts)
	if err != nil {
		t.Fatalf("Failed to create test transaction record: %v", err)
	}

	return model.TransactionRecord{
		ID:          b.ID,
		UserID:      b.UserID,
		Amount:      b.Amount,
		Units:       b.Units,
		NAVValue:    b.NAVValue,
		Type:        b.Type,
		ProcessedBy: b.ProcessedBy,
		Status:      model.TransactionStatusCompleted,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.CreatedAt,
	}
}
