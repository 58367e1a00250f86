package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"settler/apps/settler/internal/settings"
)

// SettingsHandler handles the exchange rate and threshold endpoints
type SettingsHandler struct {
	cache  *settings.Cache
	logger *zap.Logger
}

func NewSettingsHandler(cache *settings.Cache, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{cache: cache, logger: logger}
}

// GetRate handles GET /api/rate
func (h *SettingsHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.cache.ExchangeRate()
	if err != nil {
		h.logger.Error("Failed to read exchange rate", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to read exchange rate")
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, RateResponse{Rate: rate})
}

// UpdateRate handles POST /api/rate
func (h *SettingsHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if err := h.cache.SetExchangeRate(req.Rate); err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_rate", "Exchange rate must be a positive number")
			return
		}
		h.logger.Error("Failed to update exchange rate", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to update exchange rate")
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, RateResponse{Rate: req.Rate})
}

// GetMinDeposit handles GET /api/min-deposit
func (h *SettingsHandler) GetMinDeposit(w http.ResponseWriter, r *http.Request) {
	minDeposit, err := h.cache.MinDeposit()
	if err != nil {
		h.logger.Error("Failed to read minimum deposit", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to read minimum deposit")
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, MinDepositResponse{MinDepositAmount: minDeposit})
}

// UpdateMinDeposit handles POST /api/min-deposit
func (h *SettingsHandler) UpdateMinDeposit(w http.ResponseWriter, r *http.Request) {
	var req MinDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if err := h.cache.SetMinDeposit(req.MinDepositAmount); err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_min_deposit", "Minimum deposit must not be negative")
			return
		}
		h.logger.Error("Failed to update minimum deposit", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to update minimum deposit")
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, MinDepositResponse{MinDepositAmount: req.MinDepositAmount})
}

// GetMinWithdrawal handles GET /api/min-withdrawal
func (h *SettingsHandler) GetMinWithdrawal(w http.ResponseWriter, r *http.Request) {
	minWithdrawal, err := h.cache.MinWithdrawal()
	if err != nil {
		h.logger.Error("Failed to read minimum withdrawal", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to read minimum withdrawal")
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, MinWithdrawalResponse{MinWithdrawalAmount: minWithdrawal})
}

// UpdateMinWithdrawal handles POST /api/min-withdrawal
func (h *SettingsHandler) UpdateMinWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req MinWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if err := h.cache.SetMinWithdrawal(req.MinWithdrawalAmount); err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_min_withdrawal", "Minimum withdrawal must be a positive number")
			return
		}
		h.logger.Error("Failed to update minimum withdrawal", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "settings_error", "Failed to update minimum withdrawal")
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, MinWithdrawalResponse{MinWithdrawalAmount: req.MinWithdrawalAmount})
}
