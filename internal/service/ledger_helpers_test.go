package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

func lotOf(id string, rate, purchased, sold float64) model.Lot {
	return model.Lot{
		ID:             id,
		PurchaseRate:   rate,
		UnitsPurchased: purchased,
		UnitsSold:      sold,
		Status:         model.LotStatusFor(purchased, sold),
	}
}

func TestPlanFIFO(t *testing.T) {
	t.Run("consumes oldest lot first and splits the last one", func(t *testing.T) {
		lots := []model.Lot{
			lotOf("a", 10, 50, 0),
			lotOf("b", 12, 50, 0),
			lotOf("c", 14, 50, 0),
		}

		plan, err := planFIFO(lots, 70)

		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, "a", plan[0].Lot.ID)
		assert.InDelta(t, 50, plan[0].Units, 1e-12)
		assert.Equal(t, "b", plan[1].Lot.ID)
		assert.InDelta(t, 20, plan[1].Units, 1e-12)
	})

	t.Run("takes only what a partial lot has left", func(t *testing.T) {
		lots := []model.Lot{
			lotOf("a", 10, 100, 60),
			lotOf("b", 12, 10, 0),
		}

		plan, err := planFIFO(lots, 45)

		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.InDelta(t, 40, plan[0].Units, 1e-12)
		assert.InDelta(t, 5, plan[1].Units, 1e-12)
	})

	t.Run("skips exhausted lots", func(t *testing.T) {
		lots := []model.Lot{
			lotOf("a", 10, 10, 10),
			lotOf("b", 12, 10, 0),
		}

		plan, err := planFIFO(lots, 5)

		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, "b", plan[0].Lot.ID)
	})

	t.Run("fractional units sum exactly", func(t *testing.T) {
		lots := []model.Lot{
			lotOf("a", 10, 0.1, 0),
			lotOf("b", 10, 0.2, 0),
		}

		plan, err := planFIFO(lots, 0.3)

		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.InDelta(t, 0.1, plan[0].Units, 1e-12)
		assert.InDelta(t, 0.2, plan[1].Units, 1e-12)
	})

	t.Run("reports inconsistency when lots fall short", func(t *testing.T) {
		lots := []model.Lot{lotOf("a", 10, 10, 0)}

		plan, err := planFIFO(lots, 11)

		assert.ErrorIs(t, err, apperrors.ErrDataInconsistency)
		assert.Nil(t, plan)
	})

	t.Run("does not modify the input lots", func(t *testing.T) {
		lots := []model.Lot{lotOf("a", 10, 10, 0)}

		_, err := planFIFO(lots, 4)

		require.NoError(t, err)
		assert.Equal(t, 0.0, lots[0].UnitsSold)
		assert.Equal(t, model.LotStatusActive, lots[0].Status)
	})
}

func TestApplyConsumption(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	saleDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("partial sale accumulates profit without a final figure", func(t *testing.T) {
		updated, profit := applyConsumption(lotOf("a", 10, 100, 0), 60, 15, saleDate, now)

		assert.InDelta(t, 300, profit, 1e-9)
		assert.InDelta(t, 60, updated.UnitsSold, 1e-12)
		assert.InDelta(t, 300, updated.PartialProfitLoss, 1e-9)
		assert.Equal(t, model.LotStatusPartial, updated.Status)
		assert.Nil(t, updated.FinalProfitLoss)
		require.NotNil(t, updated.SellingPrice)
		assert.Equal(t, 15.0, *updated.SellingPrice)
	})

	t.Run("selling the rest freezes the final profit", func(t *testing.T) {
		lot := lotOf("a", 10, 100, 60)
		lot.PartialProfitLoss = 300

		updated, profit := applyConsumption(lot, 40, 8, saleDate, now)

		assert.InDelta(t, -80, profit, 1e-9)
		assert.Equal(t, model.LotStatusSold, updated.Status)
		assert.Equal(t, updated.UnitsPurchased, updated.UnitsSold)
		require.NotNil(t, updated.FinalProfitLoss)
		assert.InDelta(t, 220, *updated.FinalProfitLoss, 1e-9)
	})

	t.Run("a residue within epsilon closes the lot", func(t *testing.T) {
		updated, _ := applyConsumption(lotOf("a", 10, 1, 0), 1-1e-12, 10, saleDate, now)

		assert.Equal(t, model.LotStatusSold, updated.Status)
		assert.Equal(t, 1.0, updated.UnitsSold)
	})
}

func TestApplyPurchaseAndSale(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("purchases merge into a weighted average", func(t *testing.T) {
		h := applyPurchase(model.Holding{Status: model.HoldingStatusActive}, 10, 100, now)
		h = applyPurchase(h, 20, 100, now)

		assert.InDelta(t, 3000, h.TotalInvestment, 1e-9)
		assert.InDelta(t, 200, h.TotalUnitsPurchased, 1e-12)
		assert.InDelta(t, 15, h.AvgPrice, 1e-9)
		assert.InDelta(t, 200, h.RemainingUnits, 1e-12)
	})

	t.Run("partial sale keeps the holding active", func(t *testing.T) {
		h := applyPurchase(model.Holding{Status: model.HoldingStatusActive}, 10, 100, now)

		h = applySale(h, 60, 15, now)

		assert.Equal(t, model.HoldingStatusActive, h.Status)
		assert.InDelta(t, 40, h.RemainingUnits, 1e-12)
		assert.InDelta(t, 900, h.TotalRealized, 1e-9)
		assert.Nil(t, h.FinalProfitLoss)
		assert.Nil(t, h.ClosedAt)
	})

	t.Run("selling everything closes the holding", func(t *testing.T) {
		h := applyPurchase(model.Holding{Status: model.HoldingStatusActive}, 10, 100, now)
		h = applySale(h, 60, 15, now)

		h = applySale(h, 40, 8, now)

		assert.Equal(t, model.HoldingStatusSold, h.Status)
		assert.Equal(t, 0.0, h.RemainingUnits)
		assert.Equal(t, h.TotalUnitsPurchased, h.TotalUnitsSold)
		require.NotNil(t, h.FinalProfitLoss)
		assert.InDelta(t, 220, *h.FinalProfitLoss, 1e-9)
		require.NotNil(t, h.ClosedAt)
		assert.Equal(t, now, *h.ClosedAt)
	})
}

func TestRealizationFor(t *testing.T) {
	tests := []struct {
		name       string
		finalPL    float64
		wantOp     model.ValueOperation
		wantAmount float64
		wantReason model.ValueReason
		wantOK     bool
	}{
		{"profit adds", 220, model.ValueOperationAdd, 220, model.ValueReasonStockSaleProfit, true},
		{"loss subtracts magnitude", -75.5, model.ValueOperationSubtract, 75.5, model.ValueReasonStockSaleLoss, true},
		{"break even does nothing", 0, "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, amount, reason, ok := realizationFor(tt.finalPL)

			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestUnitConversions(t *testing.T) {
	t.Run("amount and units round trip at a fractional nav", func(t *testing.T) {
		units := unitsForAmount(1000, 12.2)

		assert.InDelta(t, 81.967213114754, units, 1e-12)
		assert.InDelta(t, 1000, amountForUnits(units, 12.2), 1e-9)
	})

	t.Run("proportional remainder", func(t *testing.T) {
		assert.InDelta(t, 600, proportionalRemainder(1000, 100, 60), 1e-9)
		assert.Equal(t, 0.0, proportionalRemainder(1000, 100, 0))
		assert.Equal(t, 0.0, proportionalRemainder(1000, 100, 1e-12))
		assert.Equal(t, 0.0, proportionalRemainder(1000, 0, 0))
	})

	t.Run("weighted average of an empty position", func(t *testing.T) {
		inv, total, avg := weightedAverage(0, 0, 12.5, 8)

		assert.InDelta(t, 100, inv, 1e-12)
		assert.InDelta(t, 8, total, 1e-12)
		assert.InDelta(t, 12.5, avg, 1e-12)
	})

	t.Run("positive finite", func(t *testing.T) {
		assert.True(t, isPositiveFinite(0.01))
		assert.False(t, isPositiveFinite(0))
		assert.False(t, isPositiveFinite(-1))
	})
}
