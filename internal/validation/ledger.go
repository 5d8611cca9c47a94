package validation

import (
	"regexp"
	"strings"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
)

var instrumentPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,20}$`)

// ValidateBuy validates a stock purchase request.
//
// Required fields:
//   - instrument: 1-20 letters, digits, dots or dashes
//   - rate: must be positive
//   - units: must be positive
//   - date: must be in YYYY-MM-DD format
func ValidateBuy(req request.BuyRequest) error {
	errors := make(map[string]string)

	instrument := strings.TrimSpace(req.Instrument)
	if instrument == "" {
		errors["instrument"] = "instrument is required"
	} else if !instrumentPattern.MatchString(instrument) {
		errors["instrument"] = "instrument must be 1-20 letters, digits, dots or dashes"
	}

	if !positive(req.Rate) {
		errors["rate"] = "rate must be positive"
	}
	if !positive(req.Units) {
		errors["units"] = "units must be positive"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSell validates a FIFO sale request.
func ValidateSell(req request.SellRequest) error {
	errors := make(map[string]string)

	if !positive(req.Price) {
		errors["price"] = "price must be positive"
	}
	if !positive(req.Units) {
		errors["units"] = "units must be positive"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
