package events

import (
	"time"
)

// RewardEvent is the message published to the reward topic after a claim
// settles. Delivery is at-least-once; consumers deduplicate on event_id.
type RewardEvent struct {
	EventID        string    `json:"event_id"`
	Identifier     string    `json:"identifier"`
	Asset          string    `json:"asset"`
	Amount         string    `json:"amount"`
	RewardAmount   string    `json:"reward_amount"`
	RewardCurrency string    `json:"reward_currency"`
	SettledAt      time.Time `json:"settled_at"`
	Timestamp      time.Time `json:"timestamp"`
}
