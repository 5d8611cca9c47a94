package model

import "time"

// UnitEpsilon is the tolerance used when comparing unit quantities.
const UnitEpsilon = 1e-9

// HoldingStatus is the lifecycle state of a holding. A sold holding is terminal.
type HoldingStatus string

const (
	HoldingStatusActive HoldingStatus = "active"
	HoldingStatusSold   HoldingStatus = "sold"
)

// LotStatus is the lifecycle state of a lot: active -> partial -> sold, never reversed.
type LotStatus string

const (
	LotStatusActive  LotStatus = "active"
	LotStatusPartial LotStatus = "partial"
	LotStatusSold    LotStatus = "sold"
)

// LotStatusFor derives a lot's status from its purchased and sold units.
func LotStatusFor(unitsPurchased, unitsSold float64) LotStatus {
	switch {
	case unitsSold >= unitsPurchased-UnitEpsilon:
		return LotStatusSold
	case unitsSold > UnitEpsilon:
		return LotStatusPartial
	default:
		return LotStatusActive
	}
}

// HoldingTransactionType is the direction of a stock trade in a holding's log.
type HoldingTransactionType string

const (
	HoldingTransactionBuy  HoldingTransactionType = "buy"
	HoldingTransactionSell HoldingTransactionType = "sell"
)

// Holding is the per-user, per-instrument roll-up of all lots.
type Holding struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"userId"`
	Instrument          string        `json:"instrument"`
	TotalUnitsPurchased float64       `json:"totalUnitsPurchased"`
	TotalUnitsSold      float64       `json:"totalUnitsSold"`
	RemainingUnits      float64       `json:"remainingUnits"`
	AvgPrice            float64       `json:"avgPrice"`
	TotalInvestment     float64       `json:"totalInvestment"`
	TotalRealized       float64       `json:"totalRealized"`
	FinalProfitLoss     *float64      `json:"finalProfitLoss,omitempty"`
	Status              HoldingStatus `json:"status"`
	Version             int64         `json:"version"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
	ClosedAt            *time.Time    `json:"closedAt,omitempty"`
}

// Lot is one buy of an instrument, consumed oldest-first by sells.
type Lot struct {
	ID                string     `json:"id"`
	HoldingID         string     `json:"holdingId"`
	UserID            string     `json:"userId"`
	Instrument        string     `json:"instrument"`
	PurchaseRate      float64    `json:"purchaseRate"`
	PurchaseDate      time.Time  `json:"purchaseDate"`
	UnitsPurchased    float64    `json:"unitsPurchased"`
	UnitsSold         float64    `json:"unitsSold"`
	SellingPrice      *float64   `json:"sellingPrice,omitempty"`
	SellingDate       *time.Time `json:"sellingDate,omitempty"`
	PartialProfitLoss float64    `json:"partialProfitLoss"`
	FinalProfitLoss   *float64   `json:"finalProfitLoss,omitempty"`
	Status            LotStatus  `json:"status"`
	Seq               int64      `json:"seq"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// AvailableUnits returns the units of the lot not yet consumed by sells.
func (l Lot) AvailableUnits() float64 {
	available := l.UnitsPurchased - l.UnitsSold
	if available < 0 {
		return 0
	}
	return available
}

// HoldingTransaction is an entry in a holding's append-only trade log.
type HoldingTransaction struct {
	ID        string                 `json:"id"`
	HoldingID string                 `json:"holdingId"`
	Type      HoldingTransactionType `json:"type"`
	Units     float64                `json:"units"`
	Price     float64                `json:"price"`
	Date      time.Time              `json:"date"`
	Seq       int64                  `json:"seq"`
	CreatedAt time.Time              `json:"createdAt"`
}

// LotSale records how much of one lot a single sell consumed, and at what price.
type LotSale struct {
	ID                   string    `json:"id"`
	LotID                string    `json:"lotId"`
	HoldingTransactionID string    `json:"holdingTransactionId"`
	Units                float64   `json:"units"`
	Price                float64   `json:"price"`
	Date                 time.Time `json:"date"`
	ProfitLoss           float64   `json:"profitLoss"`
	CreatedAt            time.Time `json:"createdAt"`
}

// BuyResult is returned by a stock purchase.
type BuyResult struct {
	Lot         Lot                `json:"lot"`
	Holding     Holding            `json:"holding"`
	Transaction HoldingTransaction `json:"transaction"`
	Investment  InvestResult       `json:"investment"`
}

// SellResult is returned by a FIFO sale.
type SellResult struct {
	Holding     Holding            `json:"holding"`
	Transaction HoldingTransaction `json:"transaction"`
	Sales       []LotSale          `json:"sales"`
	// ClosedProfitLoss is set when the sale closed the holding and realized its P/L.
	ClosedProfitLoss *float64 `json:"closedProfitLoss,omitempty"`
}
