package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimRequest is the body of POST /api/deposit/txid.
type ClaimRequest struct {
	TxID string `json:"txId"`
}

// ClaimCompleteResponse is returned when a claim settles.
type ClaimCompleteResponse struct {
	Status          string          `json:"status"`
	TxID            string          `json:"txId"`
	ConfirmedAmount decimal.Decimal `json:"confirmedAmount"`
	ConfirmedAt     time.Time       `json:"confirmedAt"`
	RewardKes       decimal.Decimal `json:"rewardKes"`
}

// ClaimFailedResponse is returned with HTTP 200 for every non-settling
// outcome, including previously settled claims.
type ClaimFailedResponse struct {
	Status           string           `json:"status"`
	Reason           string           `json:"reason"`
	Message          string           `json:"message,omitempty"`
	TxID             string           `json:"txId,omitempty"`
	ConfirmedAmount  *decimal.Decimal `json:"confirmedAmount,omitempty"`
	ConfirmedAt      *time.Time       `json:"confirmedAt,omitempty"`
	RewardKes        *decimal.Decimal `json:"rewardKes,omitempty"`
	MinDepositAmount *decimal.Decimal `json:"minDepositAmount,omitempty"`
}

// RateResponse carries the current or updated exchange rate.
type RateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

type RateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

type MinDepositResponse struct {
	MinDepositAmount decimal.Decimal `json:"minDepositAmount"`
}

type MinDepositRequest struct {
	MinDepositAmount decimal.Decimal `json:"minDepositAmount"`
}

type MinWithdrawalResponse struct {
	MinWithdrawalAmount decimal.Decimal `json:"minWithdrawalAmount"`
}

type MinWithdrawalRequest struct {
	MinWithdrawalAmount decimal.Decimal `json:"minWithdrawalAmount"`
}

// WithdrawRequest is the body of POST /api/withdraw. Amount is optional; when
// omitted the full available balance is withdrawn. Network is optional; when
// omitted it is inferred from the address shape.
type WithdrawRequest struct {
	Address string           `json:"address"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Network string           `json:"network,omitempty"`
}

type WithdrawCompleteResponse struct {
	Status       string          `json:"status"`
	WithdrawalID string          `json:"withdrawalId"`
	Amount       decimal.Decimal `json:"amount"`
	Address      string          `json:"address"`
	Network      string          `json:"network"`
}

type WithdrawFailedResponse struct {
	Status              string           `json:"status"`
	Reason              string           `json:"reason"`
	Message             string           `json:"message,omitempty"`
	RequestedAmount     *decimal.Decimal `json:"requestedAmount,omitempty"`
	AvailableAmount     *decimal.Decimal `json:"availableAmount,omitempty"`
	MinWithdrawalAmount *decimal.Decimal `json:"minWithdrawalAmount,omitempty"`
}

// DebugDepositRecord is one redacted entry of GET /api/debug/deposits.
type DebugDepositRecord struct {
	TxID        string          `json:"txId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      int             `json:"status"`
	Network     string          `json:"network"`
	Address     string          `json:"address"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}

// ErrorResponse represents the API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
