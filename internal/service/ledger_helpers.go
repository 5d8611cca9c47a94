package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// lotConsumption is the share of one open lot taken by a sell.
type lotConsumption struct {
	Lot   model.Lot
	Units float64
}

// planFIFO walks lots in the order given (oldest purchase first) and takes from each
// the lesser of what is still to sell and what the lot has left.
//
// Nothing is mutated. If the lots cannot cover units the plan fails with
// ErrDataInconsistency, since the holding already vouched for the quantity.
func planFIFO(lots []model.Lot, units float64) ([]lotConsumption, error) {
	remaining := decimal.NewFromFloat(units)
	epsilon := decimal.NewFromFloat(model.UnitEpsilon)

	plan := make([]lotConsumption, 0, len(lots))
	for _, lot := range lots {
		if remaining.LessThanOrEqual(epsilon) {
			break
		}
		available := decimal.NewFromFloat(lot.AvailableUnits())
		if available.LessThanOrEqual(epsilon) {
			continue
		}

		take := decimal.Min(remaining, available)
		plan = append(plan, lotConsumption{Lot: lot, Units: take.InexactFloat64()})
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(epsilon) {
		return nil, fmt.Errorf("%w: open lots are %s units short of the holding's remaining units",
			apperrors.ErrDataInconsistency, remaining.String())
	}
	return plan, nil
}

// applyConsumption returns lot after selling units of it at price on date, and the
// profit or loss of that slice. A lot that becomes sold has its final profit frozen.
func applyConsumption(lot model.Lot, units, price float64, date, now time.Time) (model.Lot, float64) {
	profit := decimal.NewFromFloat(price).
		Sub(decimal.NewFromFloat(lot.PurchaseRate)).
		Mul(decimal.NewFromFloat(units)).
		Round(unitPrecision).
		InexactFloat64()

	lot.UnitsSold = addRound(lot.UnitsSold, units)
	lot.PartialProfitLoss = addRound(lot.PartialProfitLoss, profit)
	lot.SellingPrice = &price
	sellingDate := date
	lot.SellingDate = &sellingDate
	lot.Status = model.LotStatusFor(lot.UnitsPurchased, lot.UnitsSold)
	if lot.Status == model.LotStatusSold {
		lot.UnitsSold = lot.UnitsPurchased
		finalPL := lot.PartialProfitLoss
		lot.FinalProfitLoss = &finalPL
	}
	lot.UpdatedAt = now
	return lot, profit
}

// applyPurchase merges a buy of units at rate into h and recomputes its average price.
func applyPurchase(h model.Holding, rate, units float64, now time.Time) model.Holding {
	h.TotalInvestment, h.TotalUnitsPurchased, h.AvgPrice = weightedAverage(h.TotalInvestment, h.TotalUnitsPurchased, rate, units)
	h.RemainingUnits = subRound(h.TotalUnitsPurchased, h.TotalUnitsSold)
	h.UpdatedAt = now
	return h
}

// applySale books a sale of units at price against h. When nothing remains the holding
// is closed and its final profit is realized as total proceeds minus total investment.
func applySale(h model.Holding, units, price float64, now time.Time) model.Holding {
	h.TotalUnitsSold = addRound(h.TotalUnitsSold, units)
	h.TotalRealized = addRound(h.TotalRealized, mulRound(price, units))
	h.RemainingUnits = subRound(h.TotalUnitsPurchased, h.TotalUnitsSold)
	h.UpdatedAt = now

	if h.RemainingUnits <= model.UnitEpsilon {
		h.TotalUnitsSold = h.TotalUnitsPurchased
		h.RemainingUnits = 0
		h.Status = model.HoldingStatusSold
		finalPL := subRound(h.TotalRealized, h.TotalInvestment)
		h.FinalProfitLoss = &finalPL
		closedAt := now
		h.ClosedAt = &closedAt
	}
	return h
}

// realizationFor maps a closed holding's final profit or loss to a value mutation.
// A break-even close returns ok=false.
func realizationFor(finalPL float64) (op model.ValueOperation, amount float64, reason model.ValueReason, ok bool) {
	switch {
	case finalPL > 0:
		return model.ValueOperationAdd, finalPL, model.ValueReasonStockSaleProfit, true
	case finalPL < 0:
		return model.ValueOperationSubtract, -finalPL, model.ValueReasonStockSaleLoss, true
	default:
		return "", 0, "", false
	}
}
