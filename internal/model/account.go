package model

import "time"

// Account is a user's stake in the pooled fund.
// Its money value is never stored: it is Units multiplied by the current NAV.
type Account struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	InvestedAmount float64   `json:"investedAmount"`
	Units          float64   `json:"units"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AccountSummary is an account enriched with values derived from the current NAV.
type AccountSummary struct {
	Account
	CurrentNAV   float64 `json:"currentNav"`
	CurrentValue float64 `json:"currentValue"`
}

// InvestResult is returned by a subscription into the pooled fund.
type InvestResult struct {
	Units       float64           `json:"units"`
	NewBalance  float64           `json:"newBalance"`
	NAV         float64           `json:"nav"`
	Account     Account           `json:"account"`
	Transaction TransactionRecord `json:"transaction"`
}

// WithdrawResult is returned by a redemption from the pooled fund.
type WithdrawResult struct {
	DebitedAmount float64           `json:"debitedAmount"`
	DebitedUnits  float64           `json:"debitedUnits"`
	NAV           float64           `json:"nav"`
	Account       Account           `json:"account"`
	Transaction   TransactionRecord `json:"transaction"`
}
