package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"settler/apps/settler/internal/model"
)

// ErrDuplicateIdentifier is returned when an insert loses the uniqueness race
// on settled_claims.identifier. Callers treat it as "already settled", not as
// a storage failure.
var ErrDuplicateIdentifier = errors.New("claim identifier already settled")

const pqUniqueViolation = "23505"

type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewClaimRepository(db *sql.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

// FindByIdentifiers returns the settled claim matching any of the given
// identifier forms, or nil if none has been settled.
func (r *ClaimRepository) FindByIdentifiers(identifiers ...string) (*model.SettledClaim, error) {
	var claim model.SettledClaim
	err := r.db.QueryRow(`
		SELECT id, identifier, asset, amount, reward_amount, settled_at, created_at
		FROM settled_claims
		WHERE identifier = ANY($1)
		LIMIT 1
	`, pq.Array(identifiers)).Scan(&claim.ID, &claim.Identifier, &claim.Asset, &claim.Amount,
		&claim.RewardAmount, &claim.SettledAt, &claim.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up settled claim: %w", err)
	}

	return &claim, nil
}

// InsertSettledClaim records a settlement and enqueues its reward notification
// in the same transaction. The unique index on identifier is the concurrency
// control: a concurrent insert of the same identifier surfaces as
// ErrDuplicateIdentifier.
func (r *ClaimRepository) InsertSettledClaim(claim model.SettledClaim, event model.RewardOutboxEvent) (*model.SettledClaim, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if tx.Commit() succeeds

	var inserted model.SettledClaim
	err = tx.QueryRow(`
		INSERT INTO settled_claims (identifier, asset, amount, reward_amount, settled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, identifier, asset, amount, reward_amount, settled_at, created_at
	`, claim.Identifier, claim.Asset, claim.Amount, claim.RewardAmount, claim.SettledAt).
		Scan(&inserted.ID, &inserted.Identifier, &inserted.Asset, &inserted.Amount,
			&inserted.RewardAmount, &inserted.SettledAt, &inserted.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("failed to insert settled claim: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO reward_outbox (event_id, identifier, asset, amount, reward_amount, reward_currency, status, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'unsent', $7)
	`, event.EventID, event.Identifier, event.Asset, event.Amount, event.RewardAmount,
		event.RewardCurrency, event.SettledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue reward event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	r.logger.Info("Settled claim",
		zap.String("identifier", inserted.Identifier),
		zap.String("asset", inserted.Asset),
		zap.String("amount", inserted.Amount.String()),
		zap.String("reward_amount", inserted.RewardAmount.String()))
	return &inserted, nil
}
