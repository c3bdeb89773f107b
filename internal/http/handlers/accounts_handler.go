package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"chargeledger/internal/service"
)

// AccountsHandler exposes user/station registration and wallet recharge.
type AccountsHandler struct {
	svc    *service.ChargingService
	logger *zap.Logger
}

// NewAccountsHandler builds handler set.
func NewAccountsHandler(svc *service.ChargingService, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{
		svc:    svc,
		logger: logger,
	}
}

type registerUserRequest struct {
	ID      string `json:"id"`
	Balance *int64 `json:"balance,omitempty"`
}

type registerStationRequest struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Rate  *int64 `json:"rate,omitempty"`
}

type rechargeRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// RegisterUser handles POST /api/users.
func (h *AccountsHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	balance := h.svc.Limits().DefaultUserBalance
	if req.Balance != nil {
		balance = *req.Balance
	}

	user, err := h.svc.RegisterUser(req.ID, balance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// RegisterStation handles POST /api/stations.
func (h *AccountsHandler) RegisterStation(w http.ResponseWriter, r *http.Request) {
	var req registerStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rate := h.svc.Limits().DefaultStationRate
	if req.Rate != nil {
		rate = *req.Rate
	}

	station, err := h.svc.RegisterStation(req.ID, req.Owner, rate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

// Recharge handles POST /api/wallet/recharge.
func (h *AccountsHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	var req rechargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	balance, err := h.svc.Recharge(req.UserID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"balance": balance,
	})
}
