package request

type SetValueRequest struct {
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

// AdjustValueRequest adds a positive Delta or subtracts a negative one.
type AdjustValueRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

type RecordNAVRequest struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	UpdatedBy string  `json:"updatedBy,omitempty"`
}
