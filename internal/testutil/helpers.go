package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
)

// Services bundles every ledger service wired to one database, the way the server wires them.
type Services struct {
	Value       *service.ValueService
	Totals      *service.TotalsService
	NAV         *service.NAVService
	Account     *service.AccountService
	Ledger      *service.LedgerService
	Transaction *service.TransactionService
	Fund        *service.FundService
	System      *service.SystemService
}

// NewTestServices wires all services against db with a silent logger.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	svc := testutil.NewTestServices(t, db)
//	_, err := svc.Account.OpenAccount(ctx, userID)
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()

	logger := zerolog.Nop()

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	valueRepo := repository.NewValueRepository(db)
	totalsRepo := repository.NewTotalsRepository(db)
	navRepo := repository.NewNAVRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	valueService := service.NewValueService(db, valueRepo, logger)
	totalsService := service.NewTotalsService(totalsRepo, logger)
	navService := service.NewNAVService(db, navRepo, valueRepo, totalsRepo, logger)
	accountService := service.NewAccountService(db, accountRepo, transactionRepo,
		valueService, navService, totalsService, logger)
	ledgerService := service.NewLedgerService(db, holdingRepo, accountRepo, accountService,
		valueService, navService, totalsService, service.DefaultSellRetries, logger)

	return &Services{
		Value:       valueService,
		Totals:      totalsService,
		NAV:         navService,
		Account:     accountService,
		Ledger:      ledgerService,
		Transaction: service.NewTransactionService(transactionRepo, accountRepo),
		Fund:        service.NewFundService(valueService, navService, totalsService),
		System:      service.NewSystemService(db, ""),
	}
}

func NewTestValueService(t *testing.T, db *sql.DB) *service.ValueService {
	t.Helper()
	return NewTestServices(t, db).Value
}

func NewTestTotalsService(t *testing.T, db *sql.DB) *service.TotalsService {
	t.Helper()
	return NewTestServices(t, db).Totals
}

func NewTestNAVService(t *testing.T, db *sql.DB) *service.NAVService {
	t.Helper()
	return NewTestServices(t, db).NAV
}

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()
	return NewTestServices(t, db).Account
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()
	return NewTestServices(t, db).Ledger
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()
	return NewTestServices(t, db).Transaction
}

func NewTestFundService(t *testing.T, db *sql.DB) *service.FundService {
	t.Helper()
	return NewTestServices(t, db).Fund
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return NewTestServices(t, db).System
}

// MakeID generates a random UUID for testing.
//
// Example usage:
//
//	userID := testutil.MakeID()
func MakeID() string {
	return uuid.New().String()
}

// MakeInstrument generates a ticker symbol for testing.
//
// Example usage:
//
//	instrument := testutil.MakeInstrument("ACME")
//	// Returns: "ACME1A2B"
func MakeInstrument(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
