package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"chargeledger/internal/service"
)

// ChargingHandler exposes session execution.
type ChargingHandler struct {
	svc    *service.ChargingService
	logger *zap.Logger
}

// NewChargingHandler builds handler.
func NewChargingHandler(svc *service.ChargingService, logger *zap.Logger) *ChargingHandler {
	return &ChargingHandler{
		svc:    svc,
		logger: logger,
	}
}

type startChargingRequest struct {
	UserID    string `json:"user_id"`
	StationID string `json:"station_id"`
	Units     int64  `json:"units"`
}

// Start handles POST /api/charging/start.
func (h *ChargingHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startChargingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.StationID == "" {
		writeError(w, http.StatusBadRequest, "station_id is required")
		return
	}

	result, err := h.svc.StartCharging(req.UserID, req.StationID, req.Units)
	if err != nil {
		h.logger.Debug("charging rejected",
			zap.String("user_id", req.UserID),
			zap.String("station_id", req.StationID),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
