package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
)

// AccountService handles the per-user pooled-fund balances.
// Subscriptions and redemptions are priced at the current NAV; every balance change
// writes a transaction record, moves the fund's current value and refreshes totals.
type AccountService struct {
	db              *sql.DB
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	valueService    *ValueService
	navService      *NAVService
	totalsService   *TotalsService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewAccountService creates a new AccountService with the provided dependencies.
func NewAccountService(
	db *sql.DB,
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
	valueService *ValueService,
	navService *NAVService,
	totalsService *TotalsService,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		valueService:    valueService,
		navService:      navService,
		totalsService:   totalsService,
		logger:          logger.With().Str("component", "account").Logger(),
		now:             time.Now,
	}
}

// OpenAccount creates a zero-balance account for userID.
// Returns ErrDuplicateEntry if the user already has one.
func (s *AccountService) OpenAccount(ctx context.Context, userID string) (*model.Account, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId", apperrors.ErrMissingRequiredField)
	}

	now := s.now()
	account := &model.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.InsertAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userId", userID).Msg("account opened")
	return account, nil
}

// GetAccount returns a user's account with its value derived from the current NAV.
func (s *AccountService) GetAccount(ctx context.Context, userID string) (model.AccountSummary, error) {
	account, err := s.accountRepo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return model.AccountSummary{}, err
	}
	nav, err := s.navService.CurrentNAV(ctx)
	if err != nil {
		return model.AccountSummary{}, err
	}
	return summarize(account, nav.Value), nil
}

// ListAccounts returns every account with values derived from the current NAV.
func (s *AccountService) ListAccounts(ctx context.Context) ([]model.AccountSummary, error) {
	accounts, err := s.accountRepo.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	nav, err := s.navService.CurrentNAV(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, summarize(a, nav.Value))
	}
	return summaries, nil
}

func summarize(a model.Account, nav float64) model.AccountSummary {
	return model.AccountSummary{
		Account:      a,
		CurrentNAV:   nav,
		CurrentValue: amountForUnits(a.Units, nav),
	}
}

// Invest subscribes amount into the pooled fund for userID at the current NAV.
//
// Returns:
//   - apperrors.ErrInvalidAmount if amount is not positive
//   - apperrors.ErrAccountNotFound if the user has no account
//   - apperrors.ErrNoNAV if the latest NAV is not usable
func (s *AccountService) Invest(ctx context.Context, userID string, req request.InvestRequest) (*model.InvestResult, error) {
	if !isPositiveFinite(req.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	var result model.InvestResult
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		nav, err := s.navService.currentNAVTx(ctx, tx)
		if err != nil {
			return err
		}
		result, err = s.investTx(ctx, tx, userID, req.Amount, nav.Value,
			processedByOrDefault(req.ProcessedBy, "user"), model.ValueReasonInvestment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.totalsService.refresh(ctx, "invest")
	return &result, nil
}

// investTx credits units for amount at nav inside the caller's transaction.
// It is the single place where pooled units are minted; stock purchases reach it through Buy.
func (s *AccountService) investTx(
	ctx context.Context,
	tx *sql.Tx,
	userID string,
	amount, nav float64,
	processedBy string,
	reason model.ValueReason,
) (model.InvestResult, error) {
	if !isPositiveFinite(amount) {
		return model.InvestResult{}, fmt.Errorf("%w: invest amount %v", apperrors.ErrInvalidAmount, amount)
	}
	if !isPositiveFinite(nav) {
		return model.InvestResult{}, fmt.Errorf("%w: nav %v", apperrors.ErrInvalidAmount, nav)
	}

	accountRepo := s.accountRepo.WithTx(tx)
	now := s.now()
	units := unitsForAmount(amount, nav)

	if err := accountRepo.IncrementBalances(ctx, userID, amount, units, now); err != nil {
		return model.InvestResult{}, err
	}
	account, err := accountRepo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return model.InvestResult{}, err
	}

	record := model.TransactionRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Units:       units,
		NAVValue:    nav,
		Type:        model.TransactionTypeInvest,
		ProcessedBy: processedBy,
		Status:      model.TransactionStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, &record); err != nil {
		return model.InvestResult{}, err
	}

	if _, err := s.valueService.applyTx(ctx, tx, model.ValueOperationAdd, amount, reason); err != nil {
		return model.InvestResult{}, err
	}

	s.logger.Info().
		Str("userId", userID).
		Float64("amount", amount).
		Float64("units", units).
		Float64("nav", nav).
		Msg("units credited")

	return model.InvestResult{
		Units:       units,
		NewBalance:  account.Units,
		NAV:         nav,
		Account:     account,
		Transaction: record,
	}, nil
}

// Withdraw redeems units from userID's account at the current NAV.
// Exactly one of req.Amount or req.Units must be set; the other is derived.
//
// Units are debited exactly as requested and the resulting balance is floored at 0.
// The invested amount shrinks in proportion to the units redeemed, so it reaches 0
// exactly when the units do.
//
// Returns:
//   - apperrors.ErrInvalidAmount if neither or both targets are set, or the target is not positive
//   - apperrors.ErrAccountNotFound if the user has no account
//   - apperrors.ErrInsufficientBalance if the account holds no units
//   - apperrors.ErrInsufficientUnits if the request exceeds the units held
//   - apperrors.ErrNoNAV if the latest NAV is not usable
func (s *AccountService) Withdraw(ctx context.Context, userID string, req request.WithdrawRequest) (*model.WithdrawResult, error) {
	if (req.Amount == nil) == (req.Units == nil) {
		return nil, fmt.Errorf("%w: exactly one of amount or units is required", apperrors.ErrInvalidAmount)
	}
	if req.Amount != nil && !isPositiveFinite(*req.Amount) {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.Units != nil && !isPositiveFinite(*req.Units) {
		return nil, apperrors.ErrInvalidAmount
	}

	var result model.WithdrawResult
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)

		account, err := accountRepo.GetAccountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if isZeroUnits(account.Units) {
			return apperrors.ErrInsufficientBalance
		}

		nav, err := s.navService.currentNAVTx(ctx, tx)
		if err != nil {
			return err
		}

		var debitUnits, debitAmount float64
		if req.Units != nil {
			debitUnits = *req.Units
			debitAmount = amountForUnits(debitUnits, nav.Value)
		} else {
			debitAmount = *req.Amount
			debitUnits = unitsForAmount(debitAmount, nav.Value)
		}

		if debitUnits > account.Units+model.UnitEpsilon {
			return fmt.Errorf("%w: requested %v units, account holds %v",
				apperrors.ErrInsufficientUnits, debitUnits, account.Units)
		}

		newUnits := clampZero(subRound(account.Units, debitUnits))
		if isZeroUnits(newUnits) {
			newUnits = 0
		}
		newInvested := proportionalRemainder(account.InvestedAmount, account.Units, newUnits)

		now := s.now()
		if err := accountRepo.CompareAndSetBalances(ctx, userID, account.Units, newInvested, newUnits, now); err != nil {
			return err
		}
		account.InvestedAmount = newInvested
		account.Units = newUnits
		account.UpdatedAt = now

		record := model.TransactionRecord{
			ID:          uuid.New().String(),
			UserID:      userID,
			Amount:      debitAmount,
			Units:       debitUnits,
			NAVValue:    nav.Value,
			Type:        model.TransactionTypeWithdraw,
			ProcessedBy: processedByOrDefault(req.ProcessedBy, "user"),
			Status:      model.TransactionStatusCompleted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.transactionRepo.WithTx(tx).InsertTransaction(ctx, &record); err != nil {
			return err
		}

		if _, err := s.valueService.applyTx(ctx, tx, model.ValueOperationSubtract, debitAmount, model.ValueReasonWithdrawal); err != nil {
			return err
		}

		result = model.WithdrawResult{
			DebitedAmount: debitAmount,
			DebitedUnits:  debitUnits,
			NAV:           nav.Value,
			Account:       account,
			Transaction:   record,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentUpdate) {
			s.logger.Warn().Str("userId", userID).Msg("withdraw lost a concurrent update")
		}
		return nil, err
	}

	s.logger.Info().
		Str("userId", userID).
		Float64("amount", result.DebitedAmount).
		Float64("units", result.DebitedUnits).
		Float64("nav", result.NAV).
		Msg("units debited")

	s.totalsService.refresh(ctx, "withdraw")
	return &result, nil
}
