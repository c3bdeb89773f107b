package httpserver

import (
	"net/http"

	"chargeledger/internal/http/handlers"
	"chargeledger/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Accounts *handlers.AccountsHandler
	Charging *handlers.ChargingHandler
	Reports  *handlers.ReportsHandler
	Health   http.HandlerFunc
}

// NewRouter wires HTTP routes. When authMiddleware is non-nil every mutating
// route goes behind it; read-only routes stay open.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	guarded := func(handler http.HandlerFunc) http.Handler {
		if authMiddleware == nil {
			return handler
		}
		return middleware.Chain(handler, authMiddleware)
	}

	mux.Handle("/health", method(http.MethodGet, deps.Health))

	mux.Handle("/api/users", method(http.MethodPost, guarded(deps.Accounts.RegisterUser)))
	mux.Handle("/api/stations", method(http.MethodPost, guarded(deps.Accounts.RegisterStation)))
	mux.Handle("/api/wallet/recharge", method(http.MethodPost, guarded(deps.Accounts.Recharge)))
	mux.Handle("/api/charging/start", method(http.MethodPost, guarded(deps.Charging.Start)))

	mux.Handle("/api/balances", method(http.MethodGet, http.HandlerFunc(deps.Reports.Balances)))
	mux.Handle("/api/ledger", method(http.MethodGet, http.HandlerFunc(deps.Reports.Ledger)))
	mux.Handle("/api/ledger/validity", method(http.MethodGet, http.HandlerFunc(deps.Reports.Validity)))

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
