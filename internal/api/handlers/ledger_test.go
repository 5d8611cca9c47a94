package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/testutil"
)

// ledgerFixture is an account holding 100 ACME bought at 10.
type ledgerFixture struct {
	handler *LedgerHandler
	ledger  *service.LedgerService
	account model.Account
	bought  *model.BuyResult
}

func setupLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	account := testutil.CreateAccount(t, db)

	bought, err := svcs.Ledger.Buy(context.Background(), account.UserID, request.BuyRequest{
		Instrument: "ACME",
		Rate:       10,
		Units:      100,
		Date:       "2024-01-02",
	})
	if err != nil {
		t.Fatalf("Failed to buy fixture holding: %v", err)
	}

	return ledgerFixture{
		handler: NewLedgerHandler(svcs.Ledger),
		ledger:  svcs.Ledger,
		account: account,
		bought:  bought,
	}
}

func sellRequest(t *testing.T, userID, holdingID string, body request.SellRequest) *http.Request {
	t.Helper()
	return testutil.NewJSONRequest(t, http.MethodPost,
		"/api/account/"+userID+"/holding/"+holdingID+"/sell",
		map[string]string{"uuid": userID, "holdingId": holdingID}, body)
}

func TestLedgerHandler_Buy(t *testing.T) {
	t.Run("returns 201 with the new lot", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/account/"+f.account.UserID+"/buy",
			map[string]string{"uuid": f.account.UserID},
			request.BuyRequest{Instrument: "acme", Rate: 20, Units: 100, Date: "2024-01-03"})
		w := httptest.NewRecorder()

		f.handler.Buy(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var result model.BuyResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.Holding.ID != f.bought.Holding.ID {
			t.Errorf("Expected purchase to merge into holding %s, got %s", f.bought.Holding.ID, result.Holding.ID)
		}
		if result.Holding.AvgPrice != 15 {
			t.Errorf("Expected average price 15, got %v", result.Holding.AvgPrice)
		}
	})

	t.Run("returns 400 with field errors", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/account/"+f.account.UserID+"/buy",
			map[string]string{"uuid": f.account.UserID},
			request.BuyRequest{Instrument: "", Rate: 0, Units: 1, Date: "yesterday"})
		w := httptest.NewRecorder()

		f.handler.Buy(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}

		var errResp struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&errResp)

		for _, field := range []string{"instrument", "rate", "date"} {
			if _, ok := errResp.Details[field]; !ok {
				t.Errorf("Expected a message for %s, got %v", field, errResp.Details)
			}
		}
	})
}

func TestLedgerHandler_Sell(t *testing.T) {
	t.Run("returns 201 with the consumed lots", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := sellRequest(t, f.account.UserID, f.bought.Holding.ID,
			request.SellRequest{Price: 15, Units: 60, Date: "2024-02-01"})
		w := httptest.NewRecorder()

		f.handler.Sell(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var result model.SellResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if len(result.Sales) != 1 {
			t.Fatalf("Expected 1 lot sale, got %d", len(result.Sales))
		}
		if result.Sales[0].ProfitLoss != 300 {
			t.Errorf("Expected profit 300, got %v", result.Sales[0].ProfitLoss)
		}
		if result.Holding.RemainingUnits != 40 {
			t.Errorf("Expected 40 remaining units, got %v", result.Holding.RemainingUnits)
		}
	})

	t.Run("returns 409 when selling more than held", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := sellRequest(t, f.account.UserID, f.bought.Holding.ID,
			request.SellRequest{Price: 15, Units: 101, Date: "2024-02-01"})
		w := httptest.NewRecorder()

		f.handler.Sell(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 403 for another user's holding", func(t *testing.T) {
		f := setupLedgerFixture(t)
		otherUser := testutil.MakeID()

		req := sellRequest(t, otherUser, f.bought.Holding.ID,
			request.SellRequest{Price: 15, Units: 1, Date: "2024-02-01"})
		w := httptest.NewRecorder()

		f.handler.Sell(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for an unknown holding", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := sellRequest(t, f.account.UserID, testutil.MakeID(),
			request.SellRequest{Price: 15, Units: 1, Date: "2024-02-01"})
		w := httptest.NewRecorder()

		f.handler.Sell(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 once the holding is closed", func(t *testing.T) {
		f := setupLedgerFixture(t)

		first := sellRequest(t, f.account.UserID, f.bought.Holding.ID,
			request.SellRequest{Price: 8, Units: 100, Date: "2024-02-01"})
		f.handler.Sell(httptest.NewRecorder(), first)

		req := sellRequest(t, f.account.UserID, f.bought.Holding.ID,
			request.SellRequest{Price: 8, Units: 1, Date: "2024-02-02"})
		w := httptest.NewRecorder()

		f.handler.Sell(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestLedgerHandler_Reads(t *testing.T) {
	t.Run("holdings filters by status", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/account/"+f.account.UserID+"/holding?status=sold",
			map[string]string{"uuid": f.account.UserID})
		w := httptest.NewRecorder()

		f.handler.Holdings(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var holdings []model.Holding
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&holdings)

		if len(holdings) != 0 {
			t.Errorf("Expected no sold holdings, got %d", len(holdings))
		}
	})

	t.Run("holdings returns 400 for an unknown status", func(t *testing.T) {
		f := setupLedgerFixture(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/account/"+f.account.UserID+"/holding?status=open",
			map[string]string{"uuid": f.account.UserID})
		w := httptest.NewRecorder()

		f.handler.Holdings(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("holding, lots and trade log", func(t *testing.T) {
		f := setupLedgerFixture(t)
		params := map[string]string{"uuid": f.bought.Holding.ID}
		base := "/api/holding/" + f.bought.Holding.ID

		tests := []struct {
			name    string
			path    string
			handler http.HandlerFunc
		}{
			{"holding", base, f.handler.Holding},
			{"lots", base + "/lot", f.handler.Lots},
			{"transactions", base + "/transaction", f.handler.HoldingTransactions},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := httptest.NewRecorder()

				tt.handler(w, testutil.NewRequestWithURLParams(http.MethodGet, tt.path, params))

				if w.Code != http.StatusOK {
					t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
				}
			})
		}
	})

	t.Run("lot sales after a sell", func(t *testing.T) {
		f := setupLedgerFixture(t)
		_, err := f.ledger.Sell(context.Background(), f.account.UserID, f.bought.Holding.ID,
			request.SellRequest{Price: 12, Units: 30, Date: "2024-02-01"})
		if err != nil {
			t.Fatalf("Failed to sell: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/lot/"+f.bought.Lot.ID+"/sale",
			map[string]string{"uuid": f.bought.Lot.ID})
		w := httptest.NewRecorder()

		f.handler.LotSales(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var sales []model.LotSale
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&sales)

		if len(sales) != 1 || sales[0].Units != 30 {
			t.Errorf("Expected one sale of 30 units, got %+v", sales)
		}
	})

	t.Run("unknown holding returns 404", func(t *testing.T) {
		f := setupLedgerFixture(t)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/holding/"+id,
			map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		f.handler.Holding(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
