package validation

import (
	"strings"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
)

// ValidateOpenAccount validates an account opening request.
// The userId must be a UUID: it is used as the account's path parameter.
func ValidateOpenAccount(req request.OpenAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserID) == "" {
		errors["userId"] = "userId is required"
	} else if err := ValidateUUID(req.UserID); err != nil {
		errors["userId"] = "userId must be a valid UUID"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateInvest validates a subscription request.
func ValidateInvest(req request.InvestRequest) error {
	errors := make(map[string]string)

	if !positive(req.Amount) {
		errors["amount"] = "amount must be positive"
	}
	if len(req.ProcessedBy) > 50 {
		errors["processedBy"] = "processedBy must be 50 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateWithdraw validates a redemption request.
// Exactly one of amount or units must be provided, and it must be positive.
func ValidateWithdraw(req request.WithdrawRequest) error {
	errors := make(map[string]string)

	switch {
	case req.Amount == nil && req.Units == nil:
		errors["amount"] = "one of amount or units is required"
	case req.Amount != nil && req.Units != nil:
		errors["amount"] = "amount and units are mutually exclusive"
	case req.Amount != nil && !positive(*req.Amount):
		errors["amount"] = "amount must be positive"
	case req.Units != nil && !positive(*req.Units):
		errors["units"] = "units must be positive"
	}
	if len(req.ProcessedBy) > 50 {
		errors["processedBy"] = "processedBy must be 50 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
