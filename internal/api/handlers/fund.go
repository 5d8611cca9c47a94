package handlers

import (
	"net/http"
	"strings"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/response"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/validation"
)

// FundHandler handles HTTP requests for the fund-level aggregates:
// current value, NAV series and totals.
type FundHandler struct {
	fundService   *service.FundService
	valueService  *service.ValueService
	navService    *service.NAVService
	totalsService *service.TotalsService
}

// NewFundHandler creates a new FundHandler with the provided service dependencies.
func NewFundHandler(
	fundService *service.FundService,
	valueService *service.ValueService,
	navService *service.NAVService,
	totalsService *service.TotalsService,
) *FundHandler {
	return &FundHandler{
		fundService:   fundService,
		valueService:  valueService,
		navService:    navService,
		totalsService: totalsService,
	}
}

// Overview handles GET requests for the current value, NAV and totals together.
//
// Endpoint: GET /api/fund/overview
// Response: 200 OK with FundOverview
// Error: 422 Unprocessable Entity if the latest NAV is unusable
// Error: 500 Internal Server Error if any read fails
func (h *FundHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.fundService.Overview(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveValue)
		return
	}

	response.RespondJSON(w, http.StatusOK, overview)
}

// Value handles GET requests for the fund's current value.
//
// Endpoint: GET /api/fund/value
// Response: 200 OK with CurrentValue
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Value(w http.ResponseWriter, r *http.Request) {
	cv, err := h.valueService.Get(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveValue)
		return
	}

	response.RespondJSON(w, http.StatusOK, cv)
}

// SetValue handles PUT requests to overwrite the fund's current value.
//
// Endpoint: PUT /api/fund/value
// Request Body: SetValueRequest (value, reason)
// Response: 200 OK with CurrentValue
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the update fails
func (h *FundHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetValueRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetValue(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cv, err := h.valueService.Set(r.Context(), req.Value, model.ValueReason(req.Reason))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateValue)
		return
	}

	response.RespondJSON(w, http.StatusOK, cv)
}

// AdjustValue handles POST requests to move the current value by a signed delta.
// A result below zero is stored as zero.
//
// Endpoint: POST /api/fund/value/adjust
// Request Body: AdjustValueRequest (delta, reason)
// Response: 200 OK with CurrentValue
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the update fails
func (h *FundHandler) AdjustValue(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AdjustValueRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAdjustValue(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cv, err := h.valueService.Adjust(r.Context(), req.Delta, model.ValueReason(req.Reason))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateValue)
		return
	}

	response.RespondJSON(w, http.StatusOK, cv)
}

// ValueHistory handles GET requests for the current value's audit log.
// Query parameters: reasons and operations (comma-separated), startDate, endDate,
// sortDir ("asc" or "desc", default "desc") and limit (default 50).
//
// Endpoint: GET /api/fund/value/history
// Response: 200 OK with array of ValueAudit
// Error: 400 Bad Request if a filter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) ValueHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := request.ParseValueAuditFilters(
		q.Get("reasons"),
		q.Get("operations"),
		q.Get("startDate"),
		q.Get("endDate"),
		q.Get("sortDir"),
		q.Get("limit"),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter parameters", err.Error())
		return
	}

	history, err := h.valueService.History(r.Context(), *filters)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveValue)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// NAV handles GET requests for the NAV currently used for pricing.
//
// Endpoint: GET /api/fund/nav
// Response: 200 OK with CurrentNAV
// Error: 422 Unprocessable Entity if the latest NAV is unusable
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) NAV(w http.ResponseWriter, r *http.Request) {
	nav, err := h.navService.CurrentNAV(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveNAV)
		return
	}

	response.RespondJSON(w, http.StatusOK, nav)
}

// NAVHistory handles GET requests for NAV entries, oldest first.
// Optional startDate and endDate query parameters (YYYY-MM-DD) bound the range inclusively.
//
// Endpoint: GET /api/fund/nav/history
// Response: 200 OK with array of NAVEntry
// Error: 400 Bad Request if a date is malformed or the range is inverted
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) NAVHistory(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := validation.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	history, err := h.navService.History(r.Context(), startDate, endDate)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveNAV)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// RecordNAV handles POST requests to record an operator-supplied NAV for a date.
// An existing entry for the date is overwritten.
//
// Endpoint: POST /api/fund/nav
// Request Body: RecordNAVRequest (date, value, updatedBy)
// Response: 201 Created with NAVEntry
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the write fails
func (h *FundHandler) RecordNAV(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordNAVRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordNAV(req); err != nil {
		respondValidationError(w, err)
		return
	}

	// Validated above.
	date, _ := validation.ParseDate(req.Date)

	entry, err := h.navService.Record(r.Context(), date, req.Value, req.UpdatedBy)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecordNAV)
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// RecomputeNAV handles POST requests to derive today's NAV from the current value
// and outstanding units. The optional triggeredBy query parameter attributes the entry.
//
// Endpoint: POST /api/fund/nav/recompute
// Response: 200 OK with NAVEntry
// Error: 422 Unprocessable Entity if no units are outstanding
// Error: 500 Internal Server Error if the recompute fails
func (h *FundHandler) RecomputeNAV(w http.ResponseWriter, r *http.Request) {
	triggeredBy := strings.TrimSpace(r.URL.Query().Get("triggeredBy"))
	if triggeredBy == "" {
		triggeredBy = "manual"
	}

	entry, err := h.navService.Recompute(r.Context(), triggeredBy)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecomputeNAV)
		return
	}

	response.RespondJSON(w, http.StatusOK, entry)
}

// Totals handles GET requests for the cached sums over all accounts.
//
// Endpoint: GET /api/fund/totals
// Response: 200 OK with Totals
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.totalsService.Get(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTotals)
		return
	}

	response.RespondJSON(w, http.StatusOK, totals)
}

// RecomputeTotals handles POST requests to rebuild the totals from the account table.
//
// Endpoint: POST /api/fund/totals/recompute
// Response: 200 OK with Totals
// Error: 500 Internal Server Error if the recompute fails
func (h *FundHandler) RecomputeTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.totalsService.Recompute(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecomputeTotals)
		return
	}

	response.RespondJSON(w, http.StatusOK, totals)
}
