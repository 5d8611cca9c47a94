package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// DefaultNAV prices the first subscription while the NAV ledger is still empty.
const DefaultNAV = 10.0

// unitPrecision is the number of decimal places kept for units and derived amounts.
const unitPrecision = 12

// unitsForAmount converts a money amount to pooled-fund units at nav.
func unitsForAmount(amount, nav float64) float64 {
	return decimal.NewFromFloat(amount).
		DivRound(decimal.NewFromFloat(nav), unitPrecision).
		InexactFloat64()
}

// amountForUnits converts pooled-fund units to a money amount at nav.
func amountForUnits(units, nav float64) float64 {
	return decimal.NewFromFloat(units).
		Mul(decimal.NewFromFloat(nav)).
		Round(unitPrecision).
		InexactFloat64()
}

// mulRound returns a*b rounded to unitPrecision.
func mulRound(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(unitPrecision).InexactFloat64()
}

// addRound returns a+b rounded to unitPrecision.
func addRound(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(unitPrecision).InexactFloat64()
}

// subRound returns a-b rounded to unitPrecision.
func subRound(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(unitPrecision).InexactFloat64()
}

// clampZero floors v at 0.
func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// isZeroUnits reports whether a unit quantity is zero within model.UnitEpsilon.
func isZeroUnits(units float64) bool {
	return math.Abs(units) <= model.UnitEpsilon
}

// isPositiveFinite reports whether v is a usable positive amount.
func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// weightedAverage merges a purchase of units at rate into an existing position.
// It returns the new total investment, total units and cost-weighted average price.
func weightedAverage(oldInvestment, oldUnits, rate, units float64) (investment, totalUnits, avgPrice float64) {
	inv := decimal.NewFromFloat(oldInvestment).Add(decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(units)))
	total := decimal.NewFromFloat(oldUnits).Add(decimal.NewFromFloat(units))

	investment = inv.Round(unitPrecision).InexactFloat64()
	totalUnits = total.Round(unitPrecision).InexactFloat64()
	if total.IsZero() {
		return investment, totalUnits, 0
	}
	avgPrice = inv.DivRound(total, unitPrecision).InexactFloat64()
	return investment, totalUnits, avgPrice
}

// proportionalRemainder scales invested by the fraction of units left after a redemption.
// The result is zero exactly when no units remain.
func proportionalRemainder(invested, oldUnits, newUnits float64) float64 {
	if isZeroUnits(newUnits) || isZeroUnits(oldUnits) {
		return 0
	}
	return clampZero(decimal.NewFromFloat(invested).
		Mul(decimal.NewFromFloat(newUnits)).
		DivRound(decimal.NewFromFloat(oldUnits), unitPrecision).
		InexactFloat64())
}
