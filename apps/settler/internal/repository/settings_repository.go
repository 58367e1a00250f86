package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type SettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSettingsRepository(db *sql.DB, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// Get returns the stored value for key, with found=false when no row exists.
func (r *SettingsRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`
		SELECT value FROM settings WHERE key = $1
	`, key).Scan(&value)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return value, true, nil
}

func (r *SettingsRepository) Upsert(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, key, value)

	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}

	r.logger.Info("Updated setting", zap.String("key", key), zap.String("value", value))
	return nil
}
