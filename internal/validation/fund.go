package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
)

func validateReason(reason string, errors map[string]string) {
	if strings.TrimSpace(reason) == "" {
		errors["reason"] = "reason is required"
	} else if !model.ValidValueReasons[model.ValueReason(reason)] {
		errors["reason"] = fmt.Sprintf("invalid reason: %s", reason)
	}
}

// ValidateSetValue validates an absolute current value update.
func ValidateSetValue(req request.SetValueRequest) error {
	errors := make(map[string]string)

	if req.Value < 0 || math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		errors["value"] = "value must be zero or positive"
	}
	validateReason(req.Reason, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateAdjustValue validates a relative current value update.
func ValidateAdjustValue(req request.AdjustValueRequest) error {
	errors := make(map[string]string)

	if req.Delta == 0 || math.IsNaN(req.Delta) || math.IsInf(req.Delta, 0) {
		errors["delta"] = "delta must be a non-zero number"
	}
	validateReason(req.Reason, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateRecordNAV validates an operator NAV entry.
func ValidateRecordNAV(req request.RecordNAVRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}
	if !positive(req.Value) {
		errors["value"] = "value must be positive"
	}
	if len(req.UpdatedBy) > 50 {
		errors["updatedBy"] = "updatedBy must be 50 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
