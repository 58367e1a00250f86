package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettledClaim struct {
	ID           int64           `db:"id"`
	Identifier   string          `db:"identifier"`
	Asset        string          `db:"asset"`
	Amount       decimal.Decimal `db:"amount"`
	RewardAmount decimal.Decimal `db:"reward_amount"`
	SettledAt    time.Time       `db:"settled_at"` // upstream confirmation time, not local write time
	CreatedAt    time.Time       `db:"created_at"`
}
