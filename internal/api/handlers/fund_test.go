package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api/request"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/testutil"
)

func setupFundHandler(t *testing.T) (*FundHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	return NewFundHandler(svcs.Fund, svcs.Value, svcs.NAV, svcs.Totals), db
}

func TestFundHandler_Value(t *testing.T) {
	t.Run("set then adjust", func(t *testing.T) {
		handler, _ := setupFundHandler(t)

		w := httptest.NewRecorder()
		handler.SetValue(w, testutil.NewJSONRequest(t, http.MethodPut, "/api/fund/value", nil,
			request.SetValueRequest{Value: 1000, Reason: "manual"}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 from set, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.AdjustValue(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/fund/value/adjust", nil,
			request.AdjustValueRequest{Delta: -250, Reason: "manual"}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 from adjust, got %d: %s", w.Code, w.Body.String())
		}

		var cv model.CurrentValue
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&cv)

		if cv.Value != 750 {
			t.Errorf("Expected value 750, got %v", cv.Value)
		}
	})

	t.Run("set rejects an unknown reason", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		w := httptest.NewRecorder()

		handler.SetValue(w, testutil.NewJSONRequest(t, http.MethodPut, "/api/fund/value", nil,
			request.SetValueRequest{Value: 1000, Reason: "gift"}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("history filters by reason", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		for _, body := range []request.AdjustValueRequest{
			{Delta: 100, Reason: "investment"},
			{Delta: 50, Reason: "manual"},
			{Delta: -20, Reason: "withdrawal"},
		} {
			handler.AdjustValue(httptest.NewRecorder(),
				testutil.NewJSONRequest(t, http.MethodPost, "/api/fund/value/adjust", nil, body))
		}

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/fund/value/history",
			map[string]string{"reasons": "investment,withdrawal", "sortDir": "asc"})
		w := httptest.NewRecorder()

		handler.ValueHistory(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var history []model.ValueAudit
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&history)

		if len(history) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(history))
		}
		if history[0].Reason != model.ValueReasonInvestment {
			t.Errorf("Expected oldest entry first, got %s", history[0].Reason)
		}
	})

	t.Run("history rejects a bad filter", func(t *testing.T) {
		handler, _ := setupFundHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/fund/value/history",
			map[string]string{"limit": "0"})
		w := httptest.NewRecorder()

		handler.ValueHistory(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestFundHandler_NAV(t *testing.T) {
	t.Run("nav falls back to the default", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		w := httptest.NewRecorder()

		handler.NAV(w, httptest.NewRequest(http.MethodGet, "/api/fund/nav", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var nav model.CurrentNAV
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&nav)

		if nav.Value != 10 || !nav.IsDefault {
			t.Errorf("Expected default NAV 10, got %+v", nav)
		}
	})

	t.Run("nav returns 422 for an unusable entry", func(t *testing.T) {
		handler, db := setupFundHandler(t)
		testutil.NewNAVEntry(0).Build(t, db)
		w := httptest.NewRecorder()

		handler.NAV(w, httptest.NewRequest(http.MethodGet, "/api/fund/nav", nil))

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("record then read history", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		w := httptest.NewRecorder()

		handler.RecordNAV(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/fund/nav", nil,
			request.RecordNAVRequest{Date: "2024-01-02", Value: 10.5}))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/fund/nav/history",
			map[string]string{"startDate": "2024-01-01", "endDate": "2024-01-31"})
		w = httptest.NewRecorder()

		handler.NAVHistory(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var history []model.NAVEntry
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&history)

		if len(history) != 1 || history[0].Value != 10.5 {
			t.Errorf("Expected one entry of 10.5, got %+v", history)
		}
	})

	t.Run("record rejects a malformed date", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		w := httptest.NewRecorder()

		handler.RecordNAV(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/fund/nav", nil,
			request.RecordNAVRequest{Date: "01/02/2024", Value: 10.5}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("recompute returns 422 with no units outstanding", func(t *testing.T) {
		handler, _ := setupFundHandler(t)
		w := httptest.NewRecorder()

		handler.RecomputeNAV(w, httptest.NewRequest(http.MethodPost, "/api/fund/nav/recompute", nil))

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("recompute attributes the entry", func(t *testing.T) {
		handler, db := setupFundHandler(t)
		testutil.NewAccount().WithBalances(1000, 100).Build(t, db)
		testutil.SetCurrentValue(t, db, 1100)

		req := testutil.NewRequestWithQueryParams(http.MethodPost, "/api/fund/nav/recompute",
			map[string]string{"triggeredBy": "operator"})
		w := httptest.NewRecorder()

		handler.RecomputeNAV(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var entry model.NAVEntry
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&entry)

		if entry.Value != 11 {
			t.Errorf("Expected NAV 11, got %v", entry.Value)
		}
		if entry.UpdatedBy != "operator" {
			t.Errorf("Expected updatedBy 'operator', got '%s'", entry.UpdatedBy)
		}
		if entry.Date.Format("2006-01-02") != time.Now().Format("2006-01-02") {
			t.Errorf("Expected today's date, got %s", entry.Date)
		}
	})
}

func TestFundHandler_TotalsAndOverview(t *testing.T) {
	handler, db := setupFundHandler(t)
	testutil.NewAccount().WithBalances(1000, 100).Build(t, db)
	testutil.NewAccount().WithBalances(500, 50).Build(t, db)

	t.Run("recompute totals", func(t *testing.T) {
		w := httptest.NewRecorder()

		handler.RecomputeTotals(w, httptest.NewRequest(http.MethodPost, "/api/fund/totals/recompute", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var totals model.Totals
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&totals)

		if totals.TotalUnits != 150 || totals.TotalInvestment != 1500 {
			t.Errorf("Expected 150 units and 1500 invested, got %+v", totals)
		}
	})

	t.Run("totals", func(t *testing.T) {
		w := httptest.NewRecorder()

		handler.Totals(w, httptest.NewRequest(http.MethodGet, "/api/fund/totals", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("overview", func(t *testing.T) {
		w := httptest.NewRecorder()

		handler.Overview(w, httptest.NewRequest(http.MethodGet, "/api/fund/overview", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var overview model.FundOverview
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&overview)

		if overview.Totals.TotalUnits != 150 {
			t.Errorf("Expected 150 total units, got %v", overview.Totals.TotalUnits)
		}
	})
}
