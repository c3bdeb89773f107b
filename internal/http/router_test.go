package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpserver "chargeledger/internal/http"
	"chargeledger/internal/http/handlers"
	"chargeledger/internal/http/middleware"
	"chargeledger/internal/ledger"
	"chargeledger/internal/registry"
	"chargeledger/internal/service"
)

func newTestRouter(t *testing.T, authSecret string) http.Handler {
	t.Helper()

	led, err := ledger.New(nil)
	require.NoError(t, err)

	svc := service.NewChargingService(registry.New(), led, service.Limits{
		SessionCap:          50,
		LowBalanceThreshold: 100,
		DefaultUserBalance:  1000,
		DefaultStationRate:  10,
	}, zap.NewNop())

	deps := httpserver.RouterDeps{
		Accounts: handlers.NewAccountsHandler(svc, zap.NewNop()),
		Charging: handlers.NewChargingHandler(svc, zap.NewNop()),
		Reports:  handlers.NewReportsHandler(svc),
		Health:   handlers.NewHealthHandler(),
	}

	var auth func(http.Handler) http.Handler
	if authSecret != "" {
		auth = middleware.AuthMiddleware(authSecret)
	}
	return httpserver.NewRouter(deps, auth)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, "")
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterUserEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon", "balance": 500})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Sharon", body["id"])
	require.EqualValues(t, 500, body["balance"])

	rec = doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Omitted balance falls back to the configured default.
	rec = doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Deeraj"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.EqualValues(t, 1000, decode(t, rec)["balance"])

	rec = doJSON(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChargingFlowEndToEnd(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon", "balance": 500})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/stations", map[string]interface{}{"id": "StationA", "owner": "OwnerA", "rate": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/charging/start", map[string]interface{}{
		"user_id": "Sharon", "station_id": "StationA", "units": 20,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.EqualValues(t, 200, body["cost"])
	require.EqualValues(t, 300, body["user_balance"])
	require.Len(t, body["session_id"], 8)

	rec = doJSON(t, router, http.MethodGet, "/api/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := decode(t, rec)
	users := balances["users"].([]interface{})
	require.Len(t, users, 1)
	require.EqualValues(t, 300, users[0].(map[string]interface{})["balance"])

	rec = doJSON(t, router, http.MethodGet, "/api/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	blocks := decode(t, rec)["blocks"].([]interface{})
	require.Len(t, blocks, 2)

	rec = doJSON(t, router, http.MethodGet, "/api/ledger/validity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["valid"])
}

func TestChargingRejections(t *testing.T) {
	router := newTestRouter(t, "")
	doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon", "balance": 50})
	doJSON(t, router, http.MethodPost, "/api/stations", map[string]interface{}{"id": "StationA", "owner": "OwnerA", "rate": 10})

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{"unknown user", map[string]interface{}{"user_id": "ghost", "station_id": "StationA", "units": 5}, http.StatusNotFound},
		{"unknown station", map[string]interface{}{"user_id": "Sharon", "station_id": "ghost", "units": 5}, http.StatusNotFound},
		{"zero units", map[string]interface{}{"user_id": "Sharon", "station_id": "StationA", "units": 0}, http.StatusBadRequest},
		{"over cap", map[string]interface{}{"user_id": "Sharon", "station_id": "StationA", "units": 60}, http.StatusBadRequest},
		{"insufficient balance", map[string]interface{}{"user_id": "Sharon", "station_id": "StationA", "units": 10}, http.StatusPaymentRequired},
		{"missing user id", map[string]interface{}{"station_id": "StationA", "units": 10}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/charging/start", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	// Failed attempts must not grow the ledger.
	rec := doJSON(t, router, http.MethodGet, "/api/ledger", nil)
	require.Len(t, decode(t, rec)["blocks"].([]interface{}), 1)
}

func TestRechargeEndpoint(t *testing.T) {
	router := newTestRouter(t, "")
	doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon", "balance": 500})

	rec := doJSON(t, router, http.MethodPost, "/api/wallet/recharge", map[string]interface{}{"user_id": "Sharon", "amount": 250})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 750, decode(t, rec)["balance"])

	rec = doJSON(t, router, http.MethodPost, "/api/wallet/recharge", map[string]interface{}{"user_id": "Sharon", "amount": -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/wallet/recharge", map[string]interface{}{"user_id": "ghost", "amount": 10})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutatingRoutesRequireTokenWhenConfigured(t *testing.T) {
	router := newTestRouter(t, "secret")

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]interface{}{"id": "Sharon"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Read-only routes stay open.
	rec = doJSON(t, router, http.MethodGet, "/api/ledger/validity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
