package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/response"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", apperrors.ErrAccountNotFound, http.StatusNotFound, "account not found"},
		{"wrapped invalid amount", fmt.Errorf("%w: nav 0", apperrors.ErrInvalidAmount), http.StatusBadRequest, "amount must be a positive number"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "holding belongs to another user"},
		{"insufficient units", apperrors.ErrInsufficientUnits, http.StatusConflict, "insufficient units"},
		{"concurrent update", apperrors.ErrConcurrentUpdate, http.StatusConflict, "concurrent update detected"},
		{"no units outstanding", apperrors.ErrNoUnitsOutstanding, http.StatusUnprocessableEntity, "no units outstanding"},
		{"joined dependency failure", errors.Join(apperrors.ErrDependencyFailure, apperrors.ErrNoNAV), http.StatusUnprocessableEntity, "no usable NAV"},
		{"unknown error", errors.New("disk full"), http.StatusInternalServerError, "failed to process sale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, tt.err, apperrors.ErrFailedToSell)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}

			var errResp response.ErrorResponse
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&errResp)

			if errResp.Error != tt.wantMessage {
				t.Errorf("Expected message '%s', got '%s'", tt.wantMessage, errResp.Error)
			}
			if errResp.Details != tt.err.Error() {
				t.Errorf("Expected details '%s', got '%v'", tt.err.Error(), errResp.Details)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Amount float64 `json:"amount"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid body", `{"amount": 12.5}`, false},
		{"unknown field", `{"amount": 1, "extra": true}`, true},
		{"trailing data", `{"amount": 1}{"amount": 2}`, true},
		{"malformed", `{"amount":`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			got, err := parseJSON[payload](req)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Amount != 12.5 {
				t.Errorf("Expected amount 12.5, got %v", got.Amount)
			}
		})
	}
}
