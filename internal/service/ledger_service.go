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

// DefaultSellRetries is how many times a sell is retried after losing a
// compare-and-swap to a concurrent writer.
const DefaultSellRetries = 3

// LedgerService handles stock holdings and their FIFO lots.
type LedgerService struct {
	db             *sql.DB
	holdingRepo    *repository.HoldingRepository
	accountRepo    *repository.AccountRepository
	accountService *AccountService
	valueService   *ValueService
	navService     *NAVService
	totalsService  *TotalsService
	sellRetries    int
	logger         zerolog.Logger
	now            func() time.Time
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
// A negative sellRetries disables retrying.
func NewLedgerService(
	db *sql.DB,
	holdingRepo *repository.HoldingRepository,
	accountRepo *repository.AccountRepository,
	accountService *AccountService,
	valueService *ValueService,
	navService *NAVService,
	totalsService *TotalsService,
	sellRetries int,
	logger zerolog.Logger,
) *LedgerService {
	if sellRetries < 0 {
		sellRetries = 0
	}
	return &LedgerService{
		db:             db,
		holdingRepo:    holdingRepo,
		accountRepo:    accountRepo,
		accountService: accountService,
		valueService:   valueService,
		navService:     navService,
		totalsService:  totalsService,
		sellRetries:    sellRetries,
		logger:         logger.With().Str("component", "ledger").Logger(),
		now:            time.Now,
	}
}

// normalizeInstrument trims and upper-cases a ticker.
func normalizeInstrument(instrument string) string {
	return strings.ToUpper(strings.TrimSpace(instrument))
}

// Buy records a purchase of req.Units of req.Instrument at req.Rate for userID.
//
// The purchase merges into the user's active holding of the instrument, or opens a new
// one. A lot and a buy entry are appended, and rate*units is subscribed into the pooled
// fund at the current NAV through the same path as Invest. All of it commits together.
//
// Returns:
//   - apperrors.ErrMissingRequiredField if the instrument is empty
//   - apperrors.ErrInvalidAmount if rate or units is not positive
//   - apperrors.ErrInvalidDate if the date is malformed
//   - apperrors.ErrAccountNotFound if the user has no account
func (s *LedgerService) Buy(ctx context.Context, userID string, req request.BuyRequest) (*model.BuyResult, error) {
	instrument := normalizeInstrument(req.Instrument)
	if instrument == "" {
		return nil, fmt.Errorf("%w: instrument", apperrors.ErrMissingRequiredField)
	}
	if !isPositiveFinite(req.Rate) || !isPositiveFinite(req.Units) {
		return nil, apperrors.ErrInvalidAmount
	}
	purchaseDate, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidDate, req.Date)
	}

	var result model.BuyResult
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		holdingRepo := s.holdingRepo.WithTx(tx)
		now := s.now()

		if _, err := s.accountRepo.WithTx(tx).GetAccountByUserID(ctx, userID); err != nil {
			return err
		}

		holding, err := holdingRepo.GetActiveHolding(ctx, userID, instrument)
		switch {
		case errors.Is(err, apperrors.ErrHoldingNotFound):
			holding = applyPurchase(model.Holding{
				ID:         uuid.New().String(),
				UserID:     userID,
				Instrument: instrument,
				Status:     model.HoldingStatusActive,
				CreatedAt:  now,
			}, req.Rate, req.Units, now)
			if err := holdingRepo.InsertHolding(ctx, &holding); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			expectedVersion := holding.Version
			holding = applyPurchase(holding, req.Rate, req.Units, now)
			if err := holdingRepo.UpdateHoldingPurchase(ctx, &holding, expectedVersion); err != nil {
				return err
			}
		}

		lot := model.Lot{
			ID:             uuid.New().String(),
			HoldingID:      holding.ID,
			UserID:         userID,
			Instrument:     instrument,
			PurchaseRate:   req.Rate,
			PurchaseDate:   purchaseDate,
			UnitsPurchased: req.Units,
			Status:         model.LotStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := holdingRepo.InsertLot(ctx, &lot); err != nil {
			return err
		}

		entry := model.HoldingTransaction{
			ID:        uuid.New().String(),
			HoldingID: holding.ID,
			Type:      model.HoldingTransactionBuy,
			Units:     req.Units,
			Price:     req.Rate,
			Date:      purchaseDate,
			CreatedAt: now,
		}
		if err := holdingRepo.InsertHoldingTransaction(ctx, &entry); err != nil {
			return err
		}

		nav, err := s.navService.currentNAVTx(ctx, tx)
		if err != nil {
			return err
		}
		investment, err := s.accountService.investTx(ctx, tx, userID, mulRound(req.Rate, req.Units), nav.Value,
			processedByOrDefault(req.ProcessedBy, "buy:"+instrument), model.ValueReasonTradeCompletion)
		if err != nil {
			return err
		}

		result = model.BuyResult{
			Lot:         lot,
			Holding:     holding,
			Transaction: entry,
			Investment:  investment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("userId", userID).
		Str("instrument", instrument).
		Str("holdingId", result.Holding.ID).
		Float64("units", req.Units).
		Float64("rate", req.Rate).
		Msg("stock bought")

	s.totalsService.refresh(ctx, "buy")
	return &result, nil
}

// Sell sells req.Units of holdingID at req.Price for userID, consuming lots oldest first.
//
// The quantity is checked against the holding before anything is written, so a failed
// sell leaves every lot untouched. When the sale empties the holding it is closed and
// its final profit or loss moves the fund's current value. A NAV recompute follows the
// commit; its failure is logged and does not affect the result.
//
// A sell that loses a race with a concurrent writer is retried up to the configured
// number of times.
//
// Returns:
//   - apperrors.ErrInvalidAmount if price or units is not positive
//   - apperrors.ErrInvalidDate if the date is malformed
//   - apperrors.ErrHoldingNotFound if the holding does not exist
//   - apperrors.ErrForbidden if the holding belongs to another user
//   - apperrors.ErrHoldingClosed if the holding is already sold
//   - apperrors.ErrInsufficientUnits if units exceeds the holding's remaining units
//   - apperrors.ErrConcurrentUpdate if every retry lost a race
func (s *LedgerService) Sell(ctx context.Context, userID, holdingID string, req request.SellRequest) (*model.SellResult, error) {
	if !isPositiveFinite(req.Price) || !isPositiveFinite(req.Units) {
		return nil, apperrors.ErrInvalidAmount
	}
	saleDate, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidDate, req.Date)
	}

	var result *model.SellResult
	for attempt := 0; ; attempt++ {
		result, err = s.sellOnce(ctx, userID, holdingID, req.Units, req.Price, saleDate)
		if err == nil || !errors.Is(err, apperrors.ErrConcurrentUpdate) || attempt >= s.sellRetries {
			break
		}
		s.logger.Debug().
			Str("holdingId", holdingID).
			Int("attempt", attempt+1).
			Msg("sell lost a concurrent update, retrying")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("userId", userID).
		Str("holdingId", holdingID).
		Float64("units", req.Units).
		Float64("price", req.Price).
		Int("lots", len(result.Sales)).
		Str("status", string(result.Holding.Status)).
		Msg("stock sold")

	s.recomputeNAV(ctx, holdingID)
	return result, nil
}

func (s *LedgerService) sellOnce(
	ctx context.Context,
	userID, holdingID string,
	units, price float64,
	saleDate time.Time,
) (*model.SellResult, error) {
	var result model.SellResult

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		holdingRepo := s.holdingRepo.WithTx(tx)
		now := s.now()

		holding, err := holdingRepo.GetHolding(ctx, holdingID)
		if err != nil {
			return err
		}
		if holding.UserID != userID {
			return apperrors.ErrForbidden
		}
		if holding.Status == model.HoldingStatusSold {
			return apperrors.ErrHoldingClosed
		}
		if units > holding.RemainingUnits+model.UnitEpsilon {
			return fmt.Errorf("%w: requested %v units, holding has %v remaining",
				apperrors.ErrInsufficientUnits, units, holding.RemainingUnits)
		}

		lots, err := holdingRepo.GetOpenLots(ctx, holding.ID)
		if err != nil {
			return err
		}
		plan, err := planFIFO(lots, units)
		if err != nil {
			return err
		}

		entry := model.HoldingTransaction{
			ID:        uuid.New().String(),
			HoldingID: holding.ID,
			Type:      model.HoldingTransactionSell,
			Units:     units,
			Price:     price,
			Date:      saleDate,
			CreatedAt: now,
		}
		if err := holdingRepo.InsertHoldingTransaction(ctx, &entry); err != nil {
			return err
		}

		sales := make([]model.LotSale, 0, len(plan))
		for _, step := range plan {
			updated, profit := applyConsumption(step.Lot, step.Units, price, saleDate, now)
			if err := holdingRepo.UpdateLotSale(ctx, &updated, step.Lot.UnitsSold); err != nil {
				return err
			}

			sale := model.LotSale{
				ID:                   uuid.New().String(),
				LotID:                updated.ID,
				HoldingTransactionID: entry.ID,
				Units:                step.Units,
				Price:                price,
				Date:                 saleDate,
				ProfitLoss:           profit,
				CreatedAt:            now,
			}
			if err := holdingRepo.InsertLotSale(ctx, &sale); err != nil {
				return err
			}
			sales = append(sales, sale)
		}

		expectedVersion := holding.Version
		holding = applySale(holding, units, price, now)
		if err := holdingRepo.UpdateHoldingSale(ctx, &holding, expectedVersion, units); err != nil {
			return err
		}

		if holding.Status == model.HoldingStatusSold && holding.FinalProfitLoss != nil {
			if op, amount, reason, ok := realizationFor(*holding.FinalProfitLoss); ok {
				if _, err := s.valueService.applyTx(ctx, tx, op, amount, reason); err != nil {
					return err
				}
			}
			result.ClosedProfitLoss = holding.FinalProfitLoss
		}

		result.Holding = holding
		result.Transaction = entry
		result.Sales = sales
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// recomputeNAV refreshes the NAV after a sell. Failures degrade freshness only.
func (s *LedgerService) recomputeNAV(ctx context.Context, holdingID string) {
	_, err := s.navService.Recompute(ctx, "sell")
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNoUnitsOutstanding):
		s.logger.Info().Str("holdingId", holdingID).Msg("nav recompute skipped: no units outstanding")
	default:
		s.logger.Warn().
			Err(errors.Join(apperrors.ErrDependencyFailure, err)).
			Str("holdingId", holdingID).
			Msg("nav recompute after sell failed")
	}
}

// GetHolding retrieves a holding by ID.
func (s *LedgerService) GetHolding(ctx context.Context, holdingID string) (model.Holding, error) {
	return s.holdingRepo.GetHolding(ctx, holdingID)
}

// ListHoldings returns a user's holdings, optionally filtered by status.
func (s *LedgerService) ListHoldings(ctx context.Context, userID string, status model.HoldingStatus) ([]model.Holding, error) {
	if status != "" && status != model.HoldingStatusActive && status != model.HoldingStatusSold {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}
	if _, err := s.accountRepo.GetAccountByUserID(ctx, userID); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetHoldingsByUser(ctx, userID, status)
}

// ListLots returns the lots of a holding in FIFO order.
func (s *LedgerService) ListLots(ctx context.Context, holdingID string) ([]model.Lot, error) {
	if _, err := s.holdingRepo.GetHolding(ctx, holdingID); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetLots(ctx, holdingID)
}

// ListHoldingTransactions returns a holding's buy and sell log in order.
func (s *LedgerService) ListHoldingTransactions(ctx context.Context, holdingID string) ([]model.HoldingTransaction, error) {
	if _, err := s.holdingRepo.GetHolding(ctx, holdingID); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetHoldingTransactions(ctx, holdingID)
}

// ListLotSales returns every sale that consumed part of a lot.
func (s *LedgerService) ListLotSales(ctx context.Context, lotID string) ([]model.LotSale, error) {
	if _, err := s.holdingRepo.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetLotSales(ctx, lotID)
}
