package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// FundService assembles the fund-level aggregates for display.
type FundService struct {
	valueService  *ValueService
	navService    *NAVService
	totalsService *TotalsService
}

// NewFundService creates a new FundService over the aggregate services.
func NewFundService(valueService *ValueService, navService *NAVService, totalsService *TotalsService) *FundService {
	return &FundService{
		valueService:  valueService,
		navService:    navService,
		totalsService: totalsService,
	}
}

// Overview reads the current value, current NAV and totals concurrently.
// The three reads are independent, so the result is not a single snapshot.
func (s *FundService) Overview(ctx context.Context) (model.FundOverview, error) {
	var overview model.FundOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cv, err := s.valueService.Get(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveValue, err)
		}
		overview.CurrentValue = cv
		return nil
	})
	g.Go(func() error {
		nav, err := s.navService.CurrentNAV(gctx)
		if err != nil {
			return err
		}
		overview.NAV = nav
		return nil
	})
	g.Go(func() error {
		totals, err := s.totalsService.Get(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTotals, err)
		}
		overview.Totals = totals
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.FundOverview{}, err
	}
	return overview, nil
}
