package request

type BuyRequest struct {
	Instrument  string  `json:"instrument"`
	Rate        float64 `json:"rate"`
	Date        string  `json:"date"`
	Units       float64 `json:"units"`
	ProcessedBy string  `json:"processedBy,omitempty"`
}

type SellRequest struct {
	Price float64 `json:"price"`
	Date  string  `json:"date"`
	Units float64 `json:"units"`
}
