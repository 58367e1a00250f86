package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardOutboxEvent struct {
	EventID        string          `db:"event_id"`
	Identifier     string          `db:"identifier"`
	Asset          string          `db:"asset"`
	Amount         decimal.Decimal `db:"amount"`
	RewardAmount   decimal.Decimal `db:"reward_amount"`
	RewardCurrency string          `db:"reward_currency"`
	Status         string          `db:"status"`
	SettledAt      time.Time       `db:"settled_at"`
	CreatedAt      time.Time       `db:"created_at"`
}
