package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/response"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/validation"
)

// LedgerHandler handles HTTP requests for stock holdings and their lots.
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler with the provided service dependency.
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// Buy handles POST requests to record a stock purchase for a user.
// The purchase cost is subscribed into the pooled fund at the current NAV.
//
// Endpoint: POST /api/account/{uuid}/buy
// Request Body: BuyRequest (instrument, rate, date, units, processedBy)
// Response: 201 Created with BuyResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user has no account
// Error: 409 Conflict if a concurrent purchase changed the holding
// Error: 500 Internal Server Error if the purchase fails
func (h *LedgerHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.BuyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBuy(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.ledgerService.Buy(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToBuy)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Sell handles POST requests to sell units of a holding, oldest lots first.
//
// Endpoint: POST /api/account/{uuid}/holding/{holdingId}/sell
// Request Body: SellRequest (price, date, units)
// Response: 201 Created with SellResult
// Error: 400 Bad Request if an ID is invalid (validated by middleware) or validation fails
// Error: 403 Forbidden if the holding belongs to another user
// Error: 404 Not Found if the holding does not exist
// Error: 409 Conflict if the holding is closed or has too few units
// Error: 500 Internal Server Error if the sale fails
func (h *LedgerHandler) Sell(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	holdingID := chi.URLParam(r, "holdingId")

	req, err := parseJSON[request.SellRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSell(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.ledgerService.Sell(r.Context(), userID, holdingID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSell)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Holdings handles GET requests for a user's holdings.
// The optional status query parameter filters on "active" or "sold".
//
// Endpoint: GET /api/account/{uuid}/holding
// Response: 200 OK with array of Holding
// Error: 400 Bad Request if status is unknown
// Error: 404 Not Found if the user has no account
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	status := model.HoldingStatus(r.URL.Query().Get("status"))

	holdings, err := h.ledgerService.ListHoldings(r.Context(), userID, status)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings)
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// Holding handles GET requests for a single holding.
//
// Endpoint: GET /api/holding/{uuid}
// Response: 200 OK with Holding
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Holding(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")

	holding, err := h.ledgerService.GetHolding(r.Context(), holdingID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHolding)
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// Lots handles GET requests for a holding's lots in FIFO order.
//
// Endpoint: GET /api/holding/{uuid}/lot
// Response: 200 OK with array of Lot
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Lots(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")

	lots, err := h.ledgerService.ListLots(r.Context(), holdingID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveLots)
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// HoldingTransactions handles GET requests for a holding's buy and sell log.
//
// Endpoint: GET /api/holding/{uuid}/transaction
// Response: 200 OK with array of HoldingTransaction
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) HoldingTransactions(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")

	entries, err := h.ledgerService.ListHoldingTransactions(r.Context(), holdingID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}

// LotSales handles GET requests for the sales that consumed a lot.
//
// Endpoint: GET /api/lot/{uuid}/sale
// Response: 200 OK with array of LotSale
// Error: 404 Not Found if the lot does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) LotSales(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "uuid")

	sales, err := h.ledgerService.ListLotSales(r.Context(), lotID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveLots)
		return
	}

	response.RespondJSON(w, http.StatusOK, sales)
}
