package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
)

// TotalsService maintains the cached sums over all accounts.
// The cache is only ever replaced by a full recompute, never patched.
type TotalsService struct {
	totalsRepo *repository.TotalsRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTotalsService creates a new TotalsService with the provided repository dependencies.
func NewTotalsService(totalsRepo *repository.TotalsRepository, logger zerolog.Logger) *TotalsService {
	return &TotalsService{
		totalsRepo: totalsRepo,
		logger:     logger.With().Str("component", "totals").Logger(),
		now:        time.Now,
	}
}

// Recompute rebuilds the cache from the account table and returns it.
func (s *TotalsService) Recompute(ctx context.Context) (model.Totals, error) {
	if err := s.totalsRepo.Recompute(ctx, s.now()); err != nil {
		return model.Totals{}, err
	}
	totals, _, err := s.totalsRepo.GetTotals(ctx)
	return totals, err
}

// Get returns the cached totals, computing them first if they were never computed.
func (s *TotalsService) Get(ctx context.Context) (model.Totals, error) {
	totals, ok, err := s.totalsRepo.GetTotals(ctx)
	if err != nil {
		return model.Totals{}, err
	}
	if !ok {
		return s.Recompute(ctx)
	}
	return totals, nil
}

// refresh recomputes after an account mutation. Failures are logged and swallowed:
// the cache stays stale until the next successful recompute.
func (s *TotalsService) refresh(ctx context.Context, trigger string) {
	if _, err := s.Recompute(ctx); err != nil {
		s.logger.Warn().
			Err(errors.Join(apperrors.ErrDependencyFailure, err)).
			Str("trigger", trigger).
			Msg("totals recompute failed")
	}
}
