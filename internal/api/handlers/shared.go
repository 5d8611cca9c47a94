package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/response"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/validation"
)

// maxBodyBytes caps request bodies; every ledger request is a handful of fields.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields and trailing data.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return req, errors.New("invalid JSON: unexpected data after request body")
	}
	return req, nil
}

// respondValidationError writes a 400 carrying per-field messages when available.
func respondValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// statusBySentinel maps the ledger's contract errors onto HTTP statuses.
// Entries are checked in order.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{apperrors.ErrAccountNotFound, http.StatusNotFound},
	{apperrors.ErrHoldingNotFound, http.StatusNotFound},
	{apperrors.ErrLotNotFound, http.StatusNotFound},
	{apperrors.ErrTransactionNotFound, http.StatusNotFound},
	{apperrors.ErrNAVEntryNotFound, http.StatusNotFound},
	{apperrors.ErrInvalidAmount, http.StatusBadRequest},
	{apperrors.ErrInvalidDate, http.StatusBadRequest},
	{apperrors.ErrInvalidReason, http.StatusBadRequest},
	{apperrors.ErrInvalidStatus, http.StatusBadRequest},
	{apperrors.ErrInvalidUUID, http.StatusBadRequest},
	{apperrors.ErrMissingRequiredField, http.StatusBadRequest},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrInsufficientUnits, http.StatusConflict},
	{apperrors.ErrInsufficientBalance, http.StatusConflict},
	{apperrors.ErrHoldingClosed, http.StatusConflict},
	{apperrors.ErrConcurrentUpdate, http.StatusConflict},
	{apperrors.ErrDuplicateEntry, http.StatusConflict},
	{apperrors.ErrNoNAV, http.StatusUnprocessableEntity},
	{apperrors.ErrNoUnitsOutstanding, http.StatusUnprocessableEntity},
}

// respondServiceError maps a service error onto an HTTP status.
// fallback is the user-facing message for errors outside the ledger's contract, sent as a 500.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			response.RespondError(w, m.status, m.err.Error(), err.Error())
			return
		}
	}
	response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
}
