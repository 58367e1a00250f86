package repository

import (
	"database/sql"
	"fmt"
)

// InitMigration initializes the database. In production, this would use a proper migration
// library like go-migrate
func InitMigration(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settled_claims (
			id BIGSERIAL PRIMARY KEY,
			identifier TEXT NOT NULL,
			asset VARCHAR(16) NOT NULL,
			amount DECIMAL(36,18) NOT NULL,
			reward_amount DECIMAL(36,18) NOT NULL,
			settled_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(identifier)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR(64) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS reward_outbox (
			event_id UUID PRIMARY KEY,
			identifier TEXT NOT NULL,
			asset VARCHAR(16) NOT NULL,
			amount DECIMAL(36,18) NOT NULL,
			reward_amount DECIMAL(36,18) NOT NULL,
			reward_currency VARCHAR(8) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'unsent',
			settled_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reward_outbox_status_created ON reward_outbox (status, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}
