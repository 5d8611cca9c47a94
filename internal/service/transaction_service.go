package service

import (
	"context"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
)

// TransactionService exposes the immutable log of invest and withdraw records.
// Records are only ever written by AccountService.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	accountRepo     *repository.AccountRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// GetTransaction retrieves a single transaction record by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (model.TransactionRecord, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}

// ListTransactions returns a user's records between startDate and endDate inclusive.
// Zero bounds leave that side of the range open.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, startDate, endDate time.Time) ([]model.TransactionRecord, error) {
	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidDate
	}
	if _, err := s.accountRepo.GetAccountByUserID(ctx, userID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactionsByUser(ctx, userID, startDate, endDate)
}
