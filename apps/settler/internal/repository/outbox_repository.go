package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"settler/apps/settler/internal/model"
)

type OutboxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOutboxRepository(db *sql.DB, logger *zap.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

// GetUnsentEventsForProcessing claims a batch of unsent reward events. Rows are
// locked with SKIP LOCKED and flipped to 'processing' so concurrent pollers
// never pick up the same event.
func (r *OutboxRepository) GetUnsentEventsForProcessing(limit int) ([]model.RewardOutboxEvent, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if tx.Commit() succeeds

	rows, err := tx.Query(`
		SELECT event_id, identifier, asset, amount, reward_amount, reward_currency, status, settled_at, created_at
		FROM reward_outbox
		WHERE status = 'unsent'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.RewardOutboxEvent
	for rows.Next() {
		var event model.RewardOutboxEvent
		if err := rows.Scan(&event.EventID, &event.Identifier, &event.Asset, &event.Amount,
			&event.RewardAmount, &event.RewardCurrency, &event.Status, &event.SettledAt, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, event := range events {
		if _, err := tx.Exec(`
			UPDATE reward_outbox SET status = 'processing' WHERE event_id = $1
		`, event.EventID); err != nil {
			return nil, fmt.Errorf("failed to mark outbox event as processing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *OutboxRepository) MarkEventAsSent(eventID string) error {
	return r.setEventStatus(eventID, "sent")
}

// MarkEventAsFailed returns the event to 'unsent' so the next poll retries it.
func (r *OutboxRepository) MarkEventAsFailed(eventID string) error {
	return r.setEventStatus(eventID, "unsent")
}

func (r *OutboxRepository) setEventStatus(eventID, status string) error {
	_, err := r.db.Exec(`
		UPDATE reward_outbox SET status = $1 WHERE event_id = $2
	`, status, eventID)

	if err != nil {
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}

	r.logger.Debug("Updated outbox event status",
		zap.String("event_id", eventID),
		zap.String("status", status))
	return nil
}
