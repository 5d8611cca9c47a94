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
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
)

// NAVService maintains the daily NAV series.
type NAVService struct {
	db         *sql.DB
	navRepo    *repository.NAVRepository
	valueRepo  *repository.ValueRepository
	totalsRepo *repository.TotalsRepository
	group      singleflight.Group
	logger     zerolog.Logger
	now        func() time.Time
}

// NewNAVService creates a new NAVService with the provided repository dependencies.
func NewNAVService(
	db *sql.DB,
	navRepo *repository.NAVRepository,
	valueRepo *repository.ValueRepository,
	totalsRepo *repository.TotalsRepository,
	logger zerolog.Logger,
) *NAVService {
	return &NAVService{
		db:         db,
		navRepo:    navRepo,
		valueRepo:  valueRepo,
		totalsRepo: totalsRepo,
		logger:     logger.With().Str("component", "nav").Logger(),
		now:        time.Now,
	}
}

// Recompute derives today's NAV as current value divided by total outstanding units
// and upserts it for today's date in server-local time.
//
// Totals are rebuilt from the account table in the same transaction, so the division
// never uses a stale unit count. With no units outstanding the ledger is left untouched
// and ErrNoUnitsOutstanding is returned.
//
// Concurrent calls with the same trigger share a single computation.
func (s *NAVService) Recompute(ctx context.Context, triggeredBy string) (*model.NAVEntry, error) {
	triggeredBy = processedByOrDefault(triggeredBy, "system")

	// Coalesced callers share the result, so one caller going away must not cancel it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(triggeredBy, func() (any, error) {
		return s.recompute(shared, triggeredBy)
	})
	if err != nil {
		return nil, err
	}
	entry := v.(model.NAVEntry)
	return &entry, nil
}

func (s *NAVService) recompute(ctx context.Context, triggeredBy string) (model.NAVEntry, error) {
	var entry model.NAVEntry
	now := s.now()

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		valueRepo := s.valueRepo.WithTx(tx)
		totalsRepo := s.totalsRepo.WithTx(tx)

		if err := valueRepo.EnsureCurrentValue(ctx, now); err != nil {
			return err
		}
		cv, err := valueRepo.GetCurrentValue(ctx)
		if err != nil {
			return err
		}

		if err := totalsRepo.Recompute(ctx, now); err != nil {
			return err
		}
		totals, _, err := totalsRepo.GetTotals(ctx)
		if err != nil {
			return err
		}
		if totals.TotalUnits <= model.UnitEpsilon {
			return apperrors.ErrNoUnitsOutstanding
		}

		nav := decimal.NewFromFloat(cv.Value).
			DivRound(decimal.NewFromFloat(totals.TotalUnits), unitPrecision).
			InexactFloat64()

		entry, err = s.navRepo.WithTx(tx).UpsertForDate(ctx, model.NAVEntry{
			ID:        uuid.New().String(),
			Date:      now,
			Value:     nav,
			UpdatedBy: triggeredBy,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return model.NAVEntry{}, err
	}

	s.logger.Info().
		Str("date", entry.Date.Format("2006-01-02")).
		Float64("nav", entry.Value).
		Str("triggeredBy", triggeredBy).
		Msg("nav recomputed")

	return entry, nil
}

// CurrentNAV returns the value of the entry with the latest date.
// An empty ledger yields DefaultNAV with IsDefault set.
func (s *NAVService) CurrentNAV(ctx context.Context) (model.CurrentNAV, error) {
	return currentNAV(ctx, s.navRepo)
}

// currentNAVTx is CurrentNAV read inside the caller's transaction.
func (s *NAVService) currentNAVTx(ctx context.Context, tx *sql.Tx) (model.CurrentNAV, error) {
	return currentNAV(ctx, s.navRepo.WithTx(tx))
}

func currentNAV(ctx context.Context, repo *repository.NAVRepository) (model.CurrentNAV, error) {
	entry, err := repo.GetLatest(ctx)
	if errors.Is(err, apperrors.ErrNAVEntryNotFound) {
		return model.CurrentNAV{Value: DefaultNAV, IsDefault: true}, nil
	}
	if err != nil {
		return model.CurrentNAV{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveNAV, err)
	}
	if !isPositiveFinite(entry.Value) {
		return model.CurrentNAV{}, fmt.Errorf("%w: latest entry %s has value %v",
			apperrors.ErrNoNAV, entry.Date.Format("2006-01-02"), entry.Value)
	}
	return model.CurrentNAV{Value: entry.Value, Entry: &entry}, nil
}

// Record writes an operator-supplied NAV for date. An existing entry for the
// same date is updated in place.
func (s *NAVService) Record(ctx context.Context, date time.Time, value float64, updatedBy string) (model.NAVEntry, error) {
	if !isPositiveFinite(value) {
		return model.NAVEntry{}, fmt.Errorf("%w: nav value must be positive", apperrors.ErrInvalidAmount)
	}
	if date.IsZero() {
		return model.NAVEntry{}, apperrors.ErrInvalidDate
	}

	now := s.now()
	entry, err := s.navRepo.UpsertForDate(ctx, model.NAVEntry{
		ID:        uuid.New().String(),
		Date:      date,
		Value:     value,
		UpdatedBy: processedByOrDefault(strings.ToLower(updatedBy), "manual"),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.NAVEntry{}, err
	}

	s.logger.Info().
		Str("date", entry.Date.Format("2006-01-02")).
		Float64("nav", entry.Value).
		Str("updatedBy", entry.UpdatedBy).
		Msg("nav recorded")

	return entry, nil
}

// History returns NAV entries between from and to inclusive, oldest first.
// Zero bounds leave that side of the range open.
func (s *NAVService) History(ctx context.Context, from, to time.Time) ([]model.NAVEntry, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, apperrors.ErrInvalidDate
	}
	return s.navRepo.GetHistory(ctx, from, to)
}

// SnapshotNAV recomputes the NAV on behalf of a scheduler. Having no units
// outstanding is not an error for a scheduled run.
func (s *NAVService) SnapshotNAV(ctx context.Context) error {
	_, err := s.Recompute(ctx, "scheduler")
	if errors.Is(err, apperrors.ErrNoUnitsOutstanding) {
		s.logger.Info().Msg("nav snapshot skipped: no units outstanding")
		return nil
	}
	return err
}
