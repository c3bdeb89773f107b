package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chargeledger/internal/registry"
	"chargeledger/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps core error values onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, registry.ErrUnknownUser), errors.Is(err, registry.ErrUnknownStation):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrInvalidID),
		errors.Is(err, registry.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidUnits),
		errors.Is(err, service.ErrUnitsOverCap):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
