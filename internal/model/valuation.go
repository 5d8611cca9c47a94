package model

import "time"

// ValueReason attributes a mutation of the fund's current value.
type ValueReason string

const (
	ValueReasonInvestment      ValueReason = "investment"
	ValueReasonWithdrawal      ValueReason = "withdrawal"
	ValueReasonTradeCompletion ValueReason = "trade_completion"
	ValueReasonManual          ValueReason = "manual"
	ValueReasonStockSaleProfit ValueReason = "stock_sale_profit"
	ValueReasonStockSaleLoss   ValueReason = "stock_sale_loss"
)

// ValidValueReasons contains the allowed attribution values.
var ValidValueReasons = map[ValueReason]bool{
	ValueReasonInvestment:      true,
	ValueReasonWithdrawal:      true,
	ValueReasonTradeCompletion: true,
	ValueReasonManual:          true,
	ValueReasonStockSaleProfit: true,
	ValueReasonStockSaleLoss:   true,
}

// ValueOperation is the kind of mutation applied to the current value.
type ValueOperation string

const (
	ValueOperationSet      ValueOperation = "set"
	ValueOperationAdd      ValueOperation = "add"
	ValueOperationSubtract ValueOperation = "subtract"
)

// CurrentValue is the singleton aggregate value of the fund.
type CurrentValue struct {
	Value       float64     `json:"value"`
	LastUpdated time.Time   `json:"lastUpdated"`
	UpdatedBy   ValueReason `json:"updatedBy"`
}

// ValueAudit is one entry of the current value's mutation log.
type ValueAudit struct {
	ID            string         `json:"id"`
	Operation     ValueOperation `json:"operation"`
	Amount        float64        `json:"amount"`
	PreviousValue float64        `json:"previousValue"`
	NewValue      float64        `json:"newValue"`
	Reason        ValueReason    `json:"reason"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// Totals is the cached sum over all accounts. It is only ever replaced by a full recompute.
type Totals struct {
	TotalUnits      float64   `json:"totalUnits"`
	TotalInvestment float64   `json:"totalInvestment"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FundOverview combines the fund-level aggregates for display.
type FundOverview struct {
	CurrentValue CurrentValue `json:"currentValue"`
	NAV          CurrentNAV   `json:"nav"`
	Totals       Totals       `json:"totals"`
}

// ValueAuditFilters narrows a read of the value audit log. Empty slices and nil
// dates leave that dimension unfiltered.
type ValueAuditFilters struct {
	Reasons    []ValueReason
	Operations []ValueOperation
	StartDate  *time.Time
	EndDate    *time.Time
	SortDir    string
	Limit      int
}
