package model

import "time"

// NAVEntry is the fund's per-unit value for one calendar day.
type NAVEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentNAV is the NAV used for pricing right now.
// IsDefault is set when no entry exists yet and the bootstrap value is in use.
type CurrentNAV struct {
	Value     float64   `json:"value"`
	IsDefault bool      `json:"isDefault"`
	Entry     *NAVEntry `json:"entry,omitempty"`
}
