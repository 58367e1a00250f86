package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/network"
	"settler/apps/settler/internal/withdrawal"
)

// WithdrawalHandler handles the withdrawal endpoint
type WithdrawalHandler struct {
	engine *withdrawal.Engine
	logger *zap.Logger
}

func NewWithdrawalHandler(engine *withdrawal.Engine, logger *zap.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{engine: engine, logger: logger}
}

// Withdraw handles POST /api/withdraw
func (h *WithdrawalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	net := network.Network(strings.ToUpper(strings.TrimSpace(req.Network)))

	result, err := h.engine.Withdraw(r.Context(), req.Address, req.Amount, net)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrInvalidAddress):
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_address", "Address is missing or matches no supported network")
		case errors.Is(err, withdrawal.ErrInvalidNetwork):
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_network", "Network must be TRX or SOL")
		case errors.Is(err, withdrawal.ErrInvalidAmount):
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_amount", "Amount must be a positive number")
		case errors.Is(err, exchange.ErrNotConfigured):
			h.logger.Error("Withdrawal requires exchange credentials", zap.Error(err))
			writeErrorResponse(h.logger, w, http.StatusInternalServerError, "not_configured", "Exchange credentials are not configured")
		default:
			h.logger.Error("Failed to process withdrawal", zap.Error(err))
			writeErrorResponse(h.logger, w, http.StatusInternalServerError, "internal_error", "Failed to process withdrawal")
		}
		return
	}

	switch result.Outcome {
	case withdrawal.OutcomeSubmitted:
		writeJSONResponse(h.logger, w, http.StatusOK, WithdrawCompleteResponse{
			Status:       "complete",
			WithdrawalID: result.WithdrawalID,
			Amount:       result.Amount,
			Address:      result.Address,
			Network:      string(result.Network),
		})

	case withdrawal.OutcomeBelowMinimum:
		amount, minWithdrawal := result.Amount, result.MinWithdrawal
		writeJSONResponse(h.logger, w, http.StatusOK, WithdrawFailedResponse{
			Status:              "failed",
			Reason:              "amount_too_low",
			Message:             "Withdrawal amount is below the minimum",
			RequestedAmount:     &amount,
			MinWithdrawalAmount: &minWithdrawal,
		})

	case withdrawal.OutcomeInsufficientFunds:
		amount, available := result.Amount, result.Available
		writeJSONResponse(h.logger, w, http.StatusOK, WithdrawFailedResponse{
			Status:          "failed",
			Reason:          "insufficient_funds",
			Message:         "Available balance does not cover the withdrawal",
			RequestedAmount: &amount,
			AvailableAmount: &available,
		})

	default:
		writeJSONResponse(h.logger, w, http.StatusOK, WithdrawFailedResponse{
			Status:  "failed",
			Reason:  "withdrawal_error",
			Message: result.Message,
		})
	}
}
