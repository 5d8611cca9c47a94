package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
)

// ValueService owns the fund's current aggregate value.
// Every mutation is clamped at zero, attributed to a reason and written to the audit log.
type ValueService struct {
	db        *sql.DB
	valueRepo *repository.ValueRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewValueService creates a new ValueService with the provided repository dependencies.
func NewValueService(db *sql.DB, valueRepo *repository.ValueRepository, logger zerolog.Logger) *ValueService {
	return &ValueService{
		db:        db,
		valueRepo: valueRepo,
		logger:    logger.With().Str("component", "value").Logger(),
		now:       time.Now,
	}
}

// Get returns the current value, creating it as 0 attributed to manual on first access.
func (s *ValueService) Get(ctx context.Context) (model.CurrentValue, error) {
	if err := s.valueRepo.EnsureCurrentValue(ctx, s.now()); err != nil {
		return model.CurrentValue{}, err
	}
	return s.valueRepo.GetCurrentValue(ctx)
}

// Set replaces the current value. A negative value is stored as 0.
func (s *ValueService) Set(ctx context.Context, value float64, reason model.ValueReason) (model.CurrentValue, error) {
	return s.mutate(ctx, model.ValueOperationSet, value, reason)
}

// Add increases the current value by amount.
func (s *ValueService) Add(ctx context.Context, amount float64, reason model.ValueReason) (model.CurrentValue, error) {
	return s.mutate(ctx, model.ValueOperationAdd, amount, reason)
}

// Subtract decreases the current value by amount, flooring the result at 0.
func (s *ValueService) Subtract(ctx context.Context, amount float64, reason model.ValueReason) (model.CurrentValue, error) {
	return s.mutate(ctx, model.ValueOperationSubtract, amount, reason)
}

// Adjust adds a positive delta or subtracts the magnitude of a negative one.
func (s *ValueService) Adjust(ctx context.Context, delta float64, reason model.ValueReason) (model.CurrentValue, error) {
	if delta < 0 {
		return s.Subtract(ctx, -delta, reason)
	}
	return s.Add(ctx, delta, reason)
}

// History returns the audit entries matching filters.
func (s *ValueService) History(ctx context.Context, filters model.ValueAuditFilters) ([]model.ValueAudit, error) {
	return s.valueRepo.GetAudit(ctx, filters)
}

func (s *ValueService) mutate(
	ctx context.Context,
	op model.ValueOperation,
	amount float64,
	reason model.ValueReason,
) (model.CurrentValue, error) {
	var cv model.CurrentValue
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		cv, err = s.applyTx(ctx, tx, op, amount, reason)
		return err
	})
	if err != nil {
		return model.CurrentValue{}, err
	}
	return cv, nil
}

// applyTx performs a value mutation inside the caller's transaction.
// Buy, sell, invest and withdraw use it so the value moves atomically with the ledger.
func (s *ValueService) applyTx(
	ctx context.Context,
	tx *sql.Tx,
	op model.ValueOperation,
	amount float64,
	reason model.ValueReason,
) (model.CurrentValue, error) {
	if !model.ValidValueReasons[reason] {
		return model.CurrentValue{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidReason, reason)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.CurrentValue{}, apperrors.ErrInvalidAmount
	}
	if op != model.ValueOperationSet && amount < 0 {
		return model.CurrentValue{}, fmt.Errorf("%w: %s amount must not be negative", apperrors.ErrInvalidAmount, op)
	}

	repo := s.valueRepo.WithTx(tx)
	now := s.now()

	if err := repo.EnsureCurrentValue(ctx, now); err != nil {
		return model.CurrentValue{}, err
	}
	current, err := repo.GetCurrentValue(ctx)
	if err != nil {
		return model.CurrentValue{}, err
	}

	var next float64
	switch op {
	case model.ValueOperationSet:
		next = amount
	case model.ValueOperationAdd:
		next = addRound(current.Value, amount)
	case model.ValueOperationSubtract:
		next = subRound(current.Value, amount)
	default:
		return model.CurrentValue{}, fmt.Errorf("unknown value operation %q", op)
	}
	next = clampZero(next)

	updated := model.CurrentValue{
		Value:       next,
		LastUpdated: now,
		UpdatedBy:   reason,
	}
	if err := repo.UpdateCurrentValue(ctx, updated); err != nil {
		return model.CurrentValue{}, err
	}

	audit := model.ValueAudit{
		ID:            uuid.New().String(),
		Operation:     op,
		Amount:        amount,
		PreviousValue: current.Value,
		NewValue:      next,
		Reason:        reason,
		CreatedAt:     now,
	}
	if err := repo.InsertAudit(ctx, audit); err != nil {
		return model.CurrentValue{}, err
	}

	s.logger.Debug().
		Str("operation", string(op)).
		Float64("amount", amount).
		Float64("previous", current.Value).
		Float64("value", next).
		Str("reason", string(reason)).
		Msg("current value updated")

	return updated, nil
}
