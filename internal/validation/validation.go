package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
)

// DateLayout is the calendar date format accepted by the API.
const DateLayout = "2006-01-02"

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseDateRange parses optional start and end dates from query parameters.
// Empty values yield zero times. The end may not precede the start.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	errors := make(map[string]string)
	var startDate, endDate time.Time
	var err error

	if strings.TrimSpace(start) != "" {
		if startDate, err = ParseDate(start); err != nil {
			errors["startDate"] = "startDate must be in YYYY-MM-DD format"
		}
	}
	if strings.TrimSpace(end) != "" {
		if endDate, err = ParseDate(end); err != nil {
			errors["endDate"] = "endDate must be in YYYY-MM-DD format"
		}
	}
	if len(errors) > 0 {
		return time.Time{}, time.Time{}, &Error{Fields: errors}
	}

	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
	}
	return startDate, endDate, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
