// Package apperrors defines the sentinel errors shared by repositories, services and handlers.
// Callers match them with errors.Is; lower layers wrap them with fmt.Errorf("...: %w").
package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that no unit account exists for the given user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrLotNotFound indicates that a lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrTransactionNotFound indicates that a transaction record with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNAVEntryNotFound indicates no NAV entry for the requested date.
	ErrNAVEntryNotFound = errors.New("nav entry not found")
)

// Business logic errors represent validation failures or rule violations.
// They are reported to the caller and never retried.
var (
	// ErrInvalidAmount indicates a non-positive or non-finite money, unit, price or NAV value.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidReason indicates a value-store mutation with an unknown attribution.
	ErrInvalidReason = errors.New("invalid value update reason")

	// ErrInvalidStatus indicates an unknown holding status filter.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrForbidden indicates that the holding does not belong to the requesting user.
	ErrForbidden = errors.New("holding belongs to another user")

	// ErrInsufficientUnits indicates a sell or withdrawal larger than the units held.
	ErrInsufficientUnits = errors.New("insufficient units")

	// ErrInsufficientBalance indicates a withdrawal amount larger than the account is worth.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrHoldingClosed indicates a sell against a holding that is already fully sold.
	ErrHoldingClosed = errors.New("holding is closed")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Bootstrap errors mean the fund has not been set up yet. They are soft: callers treat
// them as a no-op rather than a failure.
var (
	// ErrNoUnitsOutstanding indicates a NAV recompute while no pooled units exist.
	ErrNoUnitsOutstanding = errors.New("no units outstanding")

	// ErrNoNAV indicates that the latest NAV is not usable for pricing.
	ErrNoNAV = errors.New("no usable NAV")
)

// Storage and pipeline errors.
var (
	// ErrConcurrentUpdate indicates a compare-and-swap write lost to a concurrent writer.
	ErrConcurrentUpdate = errors.New("concurrent update detected")

	// ErrDependencyFailure marks a best-effort derived step (NAV or totals recompute) that failed.
	// It is logged and never returned from a primary ledger operation.
	ErrDependencyFailure = errors.New("dependency failure")

	// ErrDataInconsistency indicates that stored data breaks a ledger invariant
	// (e.g., open lots do not cover the holding's remaining units).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)

// Operation failure errors are the user-facing messages for unexpected failures.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveAccount      = errors.New("failed to retrieve account")
	ErrFailedToRetrieveHoldings     = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveHolding      = errors.New("failed to retrieve holding")
	ErrFailedToRetrieveLots         = errors.New("failed to retrieve lots")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrieveValue        = errors.New("failed to retrieve current value")
	ErrFailedToRetrieveNAV          = errors.New("failed to retrieve NAV")
	ErrFailedToRetrieveTotals       = errors.New("failed to retrieve totals")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
	ErrFailedToOpenAccount          = errors.New("failed to open account")
	ErrFailedToInvest               = errors.New("failed to process investment")
	ErrFailedToWithdraw             = errors.New("failed to process withdrawal")
	ErrFailedToBuy                  = errors.New("failed to process purchase")
	ErrFailedToSell                 = errors.New("failed to process sale")
	ErrFailedToUpdateValue          = errors.New("failed to update current value")
	ErrFailedToRecordNAV            = errors.New("failed to record NAV")
	ErrFailedToRecomputeNAV         = errors.New("failed to recompute NAV")
	ErrFailedToRecomputeTotals      = errors.New("failed to recompute totals")
)
