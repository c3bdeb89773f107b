package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chargeledger/internal/config"
	httpserver "chargeledger/internal/http"
	"chargeledger/internal/http/handlers"
	"chargeledger/internal/http/middleware"
	"chargeledger/internal/ledger"
	"chargeledger/internal/registry"
	"chargeledger/internal/service"
)

// App wires ledger service dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	led, err := ledger.New(nil)
	if err != nil {
		return nil, err
	}

	chargingService := service.NewChargingService(registry.New(), led, service.Limits{
		SessionCap:          cfg.Charging.SessionCap,
		LowBalanceThreshold: cfg.Charging.LowBalanceThreshold,
		DefaultUserBalance:  cfg.Charging.DefaultUserBalance,
		DefaultStationRate:  cfg.Charging.DefaultStationRate,
	}, logger)

	deps := httpserver.RouterDeps{
		Accounts: handlers.NewAccountsHandler(chargingService, logger),
		Charging: handlers.NewChargingHandler(chargingService, logger),
		Reports:  handlers.NewReportsHandler(chargingService),
		Health:   handlers.NewHealthHandler(),
	}

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Secret != "" {
		authMiddleware = middleware.AuthMiddleware(cfg.Auth.Secret)
	}

	router := httpserver.NewRouter(deps, authMiddleware)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}
