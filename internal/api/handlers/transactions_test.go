package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/testutil"
)

func TestTransactionHandler_GetTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db))
	account := testutil.CreateAccount(t, db)
	record := testutil.NewTransactionRecord(account.UserID).WithAmount(250, 25).Build(t, db)

	t.Run("returns the record", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+record.ID,
			map[string]string{"uuid": record.ID})
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.TransactionRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)

		if got.ID != record.ID {
			t.Errorf("Expected ID %s, got %s", record.ID, got.ID)
		}
		if got.Amount != 250 || got.Units != 25 {
			t.Errorf("Expected 250 for 25 units, got %v for %v", got.Amount, got.Units)
		}
	})

	t.Run("returns 404 for an unknown record", func(t *testing.T) {
		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+id,
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
