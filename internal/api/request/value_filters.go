package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

// Audit log paging bounds.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// ParseValueAuditFilters extracts and validates value audit filters from query parameters.
//
// Parameters are expected as comma-separated strings (for reasons and operations)
// or single values (for other fields). All parameters are optional.
//
// Validation rules:
//   - reasons: must be known value reasons (investment, withdrawal, manual, ...)
//   - operations: must be set, add or subtract
//   - startDate/endDate: YYYY-MM-DD or RFC3339; a bare endDate includes the whole day
//   - sortDir: "asc" or "desc" (defaults to "desc")
//   - limit: between 1 and MaxAuditLimit (defaults to DefaultAuditLimit)
func ParseValueAuditFilters(
	reasonsParam, operationsParam, startDateParam, endDateParam, sortDirParam, limitParam string,
) (*model.ValueAuditFilters, error) {
	filters := &model.ValueAuditFilters{}

	for _, reason := range splitParam(reasonsParam) {
		if !model.ValidValueReasons[model.ValueReason(reason)] {
			return nil, fmt.Errorf("invalid reason: %s", reason)
		}
		filters.Reasons = append(filters.Reasons, model.ValueReason(reason))
	}

	for _, op := range splitParam(operationsParam) {
		switch model.ValueOperation(op) {
		case model.ValueOperationSet, model.ValueOperationAdd, model.ValueOperationSubtract:
			filters.Operations = append(filters.Operations, model.ValueOperation(op))
		default:
			return nil, fmt.Errorf("invalid operation: %s", op)
		}
	}

	if startDateParam != "" {
		startTime, _, err := parseFilterTime(startDateParam)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate format: %w", err)
		}
		filters.StartDate = &startTime
	}

	if endDateParam != "" {
		endTime, dateOnly, err := parseFilterTime(endDateParam)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate format: %w", err)
		}
		if dateOnly {
			endTime = endTime.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filters.EndDate = &endTime
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, fmt.Errorf("invalid date range: endDate is before startDate")
	}

	if sortDirParam != "" {
		sortDir := strings.ToLower(sortDirParam)
		if sortDir != "asc" && sortDir != "desc" {
			return nil, fmt.Errorf("invalid sortDir: must be 'asc' or 'desc'")
		}
		filters.SortDir = sortDir
	} else {
		filters.SortDir = "desc"
	}

	if limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: must be a number")
		}
		if limit < 1 || limit > MaxAuditLimit {
			return nil, fmt.Errorf("invalid limit: must be between 1 and %d", MaxAuditLimit)
		}
		filters.Limit = limit
	} else {
		filters.Limit = DefaultAuditLimit
	}

	return filters, nil
}

func splitParam(param string) []string {
	if param == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(param, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFilterTime accepts YYYY-MM-DD and RFC3339. dateOnly reports the former.
func parseFilterTime(str string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return t, true, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
