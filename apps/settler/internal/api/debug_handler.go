package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"settler/apps/settler/internal/model"
)

// DepositLister reads recent deposit history for the debug endpoint.
type DepositLister interface {
	DepositHistory(ctx context.Context, coin string, limit int) ([]model.DepositRecord, error)
}

// DebugHandler exposes recent upstream deposits outside production.
type DebugHandler struct {
	exchange   DepositLister
	asset      string
	limit      int
	production bool
	logger     *zap.Logger
}

func NewDebugHandler(exchange DepositLister, asset string, limit int, production bool, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{
		exchange:   exchange,
		asset:      asset,
		limit:      limit,
		production: production,
		logger:     logger,
	}
}

// ListDeposits handles GET /api/debug/deposits
func (h *DebugHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	if h.production {
		http.NotFound(w, r)
		return
	}

	records, err := h.exchange.DepositHistory(r.Context(), h.asset, h.limit)
	if err != nil {
		h.logger.Error("Failed to fetch deposit history", zap.Error(err))
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "exchange_error", "Failed to fetch deposit history")
		return
	}

	redacted := make([]DebugDepositRecord, 0, len(records))
	for _, record := range records {
		redacted = append(redacted, DebugDepositRecord{
			TxID:        record.TxID,
			Amount:      record.Amount,
			Status:      record.Status,
			Network:     record.Network,
			Address:     maskAddress(record.Address),
			ConfirmedAt: record.ConfirmedAt(),
		})
	}

	writeJSONResponse(h.logger, w, http.StatusOK, redacted)
}

func maskAddress(address string) string {
	if len(address) <= 8 {
		return "****"
	}
	return address[:4] + "..." + address[len(address)-4:]
}
