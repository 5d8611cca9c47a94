package model

import "time"

// TransactionType is the direction of a pooled-fund money movement.
type TransactionType string

const (
	TransactionTypeInvest   TransactionType = "invest"
	TransactionTypeWithdraw TransactionType = "withdraw"
)

// TransactionStatusCompleted is the only status a record is written with;
// records are immutable once inserted.
const TransactionStatusCompleted = "completed"

// TransactionRecord is the audit entry for an invest or withdraw.
type TransactionRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      float64         `json:"amount"`
	Units       float64         `json:"units"`
	NAVValue    float64         `json:"navValue"`
	Type        TransactionType `json:"type"`
	ProcessedBy string          `json:"processedBy"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
