package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/config"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}

	return NewRouter(Services{
		System:      svcs.System,
		Account:     svcs.Account,
		Ledger:      svcs.Ledger,
		Transaction: svcs.Transaction,
		Fund:        svcs.Fund,
		Value:       svcs.Value,
		NAV:         svcs.NAV,
		Totals:      svcs.Totals,
	}, cfg, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestRouter_LedgerFlow(t *testing.T) {
	h := newTestRouter(t)
	userID := testutil.MakeID()

	w := do(t, h, http.MethodPost, "/api/account", map[string]string{"userId": userID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/account/"+userID+"/buy", map[string]any{
		"instrument": "ACME", "rate": 10, "units": 100, "date": "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bought := decode[model.BuyResult](t, w)

	sellPath := "/api/account/" + userID + "/holding/" + bought.Holding.ID + "/sell"
	w = do(t, h, http.MethodPost, sellPath, map[string]any{"price": 15, "units": 60, "date": "2024-02-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, sellPath, map[string]any{"price": 8, "units": 40, "date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sold := decode[model.SellResult](t, w)
	assert.Equal(t, model.HoldingStatusSold, sold.Holding.Status)

	w = do(t, h, http.MethodGet, "/api/fund/overview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	overview := decode[model.FundOverview](t, w)
	assert.InDelta(t, 1220, overview.CurrentValue.Value, 1e-9)
	assert.InDelta(t, 12.2, overview.NAV.Value, 1e-12)
	assert.Equal(t, 100.0, overview.Totals.TotalUnits)

	w = do(t, h, http.MethodGet, "/api/lot/"+bought.Lot.ID+"/sale", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]model.LotSale](t, w), 2)

	w = do(t, h, http.MethodGet, "/api/account/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[model.AccountSummary](t, w)
	assert.InDelta(t, 1220, summary.CurrentValue, 1e-9)
}

func TestRouter_RejectsMalformedIDs(t *testing.T) {
	h := newTestRouter(t)
	userID := testutil.MakeID()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"account", http.MethodGet, "/api/account/not-a-uuid"},
		{"holding", http.MethodGet, "/api/holding/123"},
		{"sell holding id", http.MethodPost, "/api/account/" + userID + "/holding/abc/sell"},
		{"lot", http.MethodGet, "/api/lot/xyz/sale"},
		{"transaction", http.MethodGet, "/api/transaction/xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRouter_SystemAndCORS(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodGet, "/api/system/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/fund/nav", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
