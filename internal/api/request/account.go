package request

type OpenAccountRequest struct {
	UserID string `json:"userId"`
}

type InvestRequest struct {
	Amount      float64 `json:"amount"`
	ProcessedBy string  `json:"processedBy,omitempty"`
}

// WithdrawRequest carries exactly one of Amount or Units.
type WithdrawRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	Units       *float64 `json:"units,omitempty"`
	ProcessedBy string   `json:"processedBy,omitempty"`
}
