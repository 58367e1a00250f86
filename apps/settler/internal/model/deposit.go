package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit statuses reported by the exchange. Anything other than
// DepositStatusSuccess is treated the same as "not found".
const DepositStatusSuccess = 1

// DepositRecord is a single entry from the exchange's deposit history.
// It is never persisted; the exchange owns this data.
type DepositRecord struct {
	TxID       string          `json:"txId"`
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Status     int             `json:"status"`
	InsertTime int64           `json:"insertTime"`
	Network    string          `json:"network"`
	Address    string          `json:"address"`
}

func (d DepositRecord) Confirmed() bool {
	return d.Status == DepositStatusSuccess
}

func (d DepositRecord) ConfirmedAt() time.Time {
	return time.UnixMilli(d.InsertTime).UTC()
}
