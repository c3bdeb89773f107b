package handlers

import (
	"net/http"

	"chargeledger/internal/service"
)

// ReportsHandler exposes the read-only views over accounts and ledger.
type ReportsHandler struct {
	svc *service.ChargingService
}

// NewReportsHandler builds handler.
func NewReportsHandler(svc *service.ChargingService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Balances handles GET /api/balances.
func (h *ReportsHandler) Balances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Balances())
}

// Ledger handles GET /api/ledger.
func (h *ReportsHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": h.svc.LedgerSnapshot(),
	})
}

// Validity handles GET /api/ledger/validity.
func (h *ReportsHandler) Validity(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.VerifyLedger(); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}
