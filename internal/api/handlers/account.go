package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/response"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/validation"
)

// AccountHandler handles HTTP requests for the per-user unit accounts.
type AccountHandler struct {
	accountService     *service.AccountService
	transactionService *service.TransactionService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependencies.
func NewAccountHandler(accountService *service.AccountService, transactionService *service.TransactionService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		transactionService: transactionService,
	}
}

// OpenAccount handles POST requests to open a zero-balance account for a user.
//
// Endpoint: POST /api/account
// Request Body: OpenAccountRequest (userId)
// Response: 201 Created with Account
// Error: 400 Bad Request if the body is invalid or userId is not a UUID
// Error: 409 Conflict if the user already has an account
// Error: 500 Internal Server Error if creation fails
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.OpenAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateOpenAccount(req); err != nil {
		respondValidationError(w, err)
		return
	}

	account, err := h.accountService.OpenAccount(r.Context(), req.UserID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToOpenAccount)
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// Accounts handles GET requests to list every account with its value at the current NAV.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of AccountSummary
// Error: 422 Unprocessable Entity if the latest NAV is unusable
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAccounts)
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// Account handles GET requests for a single user's account.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with AccountSummary
// Error: 400 Bad Request if the user ID is invalid (validated by middleware)
// Error: 404 Not Found if the user has no account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAccount)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Invest handles POST requests to subscribe money into the pooled fund.
//
// Endpoint: POST /api/account/{uuid}/invest
// Request Body: InvestRequest (amount, processedBy)
// Response: 201 Created with InvestResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user has no account
// Error: 422 Unprocessable Entity if the latest NAV is unusable
// Error: 500 Internal Server Error if the subscription fails
func (h *AccountHandler) Invest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.InvestRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateInvest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.accountService.Invest(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToInvest)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Withdraw handles POST requests to redeem units from the pooled fund.
//
// Endpoint: POST /api/account/{uuid}/withdraw
// Request Body: WithdrawRequest (exactly one of amount or units, processedBy)
// Response: 201 Created with WithdrawResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user has no account
// Error: 409 Conflict if the account holds too few units
// Error: 500 Internal Server Error if the redemption fails
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.WithdrawRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateWithdraw(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.accountService.Withdraw(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToWithdraw)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Transactions handles GET requests for a user's invest and withdraw records.
// Optional startDate and endDate query parameters (YYYY-MM-DD) bound the range inclusively.
//
// Endpoint: GET /api/account/{uuid}/transaction
// Response: 200 OK with array of TransactionRecord
// Error: 400 Bad Request if a date is malformed or the range is inverted
// Error: 404 Not Found if the user has no account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")

	startDate, endDate, err := validation.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respondValidationError(w, err)
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), userID, startDate, endDate)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}
