package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/tropicaldog17/coinwatch/internal/errors"
	"github.com/tropicaldog17/coinwatch/internal/services"
)

type MarketHandler struct {
	service services.QueryService
}

func NewMarketHandler(service services.QueryService) *MarketHandler {
	return &MarketHandler{service: service}
}

// GET /stats?coin=bitcoin
func (h *MarketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	coin := r.URL.Query().Get("coin")
	if coin == "" {
		writeError(w, http.StatusBadRequest, "Coin parameter is required")
		return
	}

	stats, err := h.service.GetStats(r.Context(), coin)
	if err != nil {
		h.writeServiceError(w, err, "An error occurred while fetching data")
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// GET /deviation?coin=bitcoin
func (h *MarketHandler) HandleDeviation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	coin := r.URL.Query().Get("coin")
	if coin == "" {
		writeError(w, http.StatusBadRequest, "Coin parameter is required")
		return
	}

	deviation, err := h.service.GetDeviation(r.Context(), coin, services.DefaultDeviationWindow)
	if err != nil {
		h.writeServiceError(w, err, "An error occurred while calculating deviation")
		return
	}
	json.NewEncoder(w).Encode(deviation)
}

func (h *MarketHandler) writeServiceError(w http.ResponseWriter, err error, internalMessage string) {
	var invalid *apperrors.ErrInvalidArgument
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "No data found for the specified coin")
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	default:
		writeError(w, http.StatusInternalServerError, internalMessage)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
