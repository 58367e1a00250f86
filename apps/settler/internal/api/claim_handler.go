package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/settlement"
)

// ClaimHandler handles the deposit claim endpoint
type ClaimHandler struct {
	engine *settlement.Engine
	logger *zap.Logger
}

func NewClaimHandler(engine *settlement.Engine, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{engine: engine, logger: logger}
}

// SubmitClaim handles POST /api/deposit/txid
func (h *ClaimHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "invalid_request_body", "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.TxID) == "" {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "missing_tx_id", "Transaction id is required")
		return
	}

	result, err := h.engine.Verify(r.Context(), req.TxID)
	if err != nil {
		if errors.Is(err, settlement.ErrEmptyIdentifier) {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "missing_tx_id", "Transaction id is required")
			return
		}
		if errors.Is(err, exchange.ErrNotConfigured) {
			h.logger.Error("Claim verification requires exchange credentials", zap.Error(err))
			writeErrorResponse(h.logger, w, http.StatusInternalServerError, "not_configured", "Exchange credentials are not configured")
			return
		}
		h.logger.Error("Failed to verify claim", zap.String("tx_id", req.TxID), zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "internal_error", "Failed to verify claim")
		return
	}

	switch result.Outcome {
	case settlement.OutcomeSettled:
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimCompleteResponse{
			Status:          "complete",
			TxID:            result.Identifier,
			ConfirmedAmount: result.Amount,
			ConfirmedAt:     result.ConfirmedAt,
			RewardKes:       result.RewardAmount,
		})

	case settlement.OutcomeAlreadySettled:
		// Previously settled claims answer 200 with a failed-status body.
		amount, reward, confirmedAt := result.Amount, result.RewardAmount, result.ConfirmedAt
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimFailedResponse{
			Status:          "failed",
			Reason:          "already_used",
			Message:         "This transaction id has already been claimed",
			TxID:            result.Identifier,
			ConfirmedAmount: &amount,
			ConfirmedAt:     &confirmedAt,
			RewardKes:       &reward,
		})

	case settlement.OutcomeNotYetConfirmed:
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimFailedResponse{
			Status:  "failed",
			Reason:  "not_found",
			Message: "No confirmed deposit matches this transaction id yet",
			TxID:    result.Identifier,
		})

	case settlement.OutcomeBelowMinimum:
		amount, minDeposit := result.Amount, result.MinDeposit
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimFailedResponse{
			Status:           "failed",
			Reason:           "amount_too_low",
			Message:          "Confirmed deposit is below the minimum amount",
			TxID:             result.Identifier,
			ConfirmedAmount:  &amount,
			MinDepositAmount: &minDeposit,
		})

	case settlement.OutcomeRegionRestricted:
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimFailedResponse{
			Status:  "failed",
			Reason:  "region_restricted",
			Message: result.Message,
			TxID:    result.Identifier,
		})

	default:
		writeJSONResponse(h.logger, w, http.StatusOK, ClaimFailedResponse{
			Status:  "failed",
			Reason:  "verification_error",
			Message: result.Message,
			TxID:    result.Identifier,
		})
	}
}
