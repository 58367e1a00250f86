package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/model"
	"settler/apps/settler/internal/repository"
)

// CanonicalPrefix marks internal exchange transfers in deposit identifiers.
// Upstream records may carry it or not, so matching always considers both the
// prefixed and the bare form.
const CanonicalPrefix = "Off-chain transfer "

// ErrEmptyIdentifier is returned for identifiers that are blank after trimming.
var ErrEmptyIdentifier = errors.New("claim identifier is empty")

type Outcome string

const (
	OutcomeSettled           Outcome = "settled"
	OutcomeAlreadySettled    Outcome = "already_settled"
	OutcomeNotYetConfirmed   Outcome = "not_yet_confirmed"
	OutcomeBelowMinimum      Outcome = "below_minimum"
	OutcomeRegionRestricted  Outcome = "region_restricted"
	OutcomeVerificationError Outcome = "verification_error"
)

// Result is the outcome of a claim verification. Amount, RewardAmount and
// ConfirmedAt are set for Settled and AlreadySettled; MinDeposit for
// BelowMinimum; Message for the two upstream-failure outcomes.
type Result struct {
	Outcome      Outcome
	Identifier   string
	Amount       decimal.Decimal
	RewardAmount decimal.Decimal
	ConfirmedAt  time.Time
	MinDeposit   decimal.Decimal
	Message      string
}

// ClaimStore is the durable settlement ledger.
type ClaimStore interface {
	FindByIdentifiers(identifiers ...string) (*model.SettledClaim, error)
	InsertSettledClaim(claim model.SettledClaim, event model.RewardOutboxEvent) (*model.SettledClaim, error)
}

// DepositFetcher reads recent deposit history from the exchange.
type DepositFetcher interface {
	DepositHistory(ctx context.Context, coin string, limit int) ([]model.DepositRecord, error)
}

// Settings provides the tunables gating settlement.
type Settings interface {
	ExchangeRate() (decimal.Decimal, error)
	MinDeposit() (decimal.Decimal, error)
}

type Engine struct {
	store          ClaimStore
	exchange       DepositFetcher
	settings       Settings
	asset          string
	rewardCurrency string
	historyLimit   int
	logger         *zap.Logger
}

func NewEngine(store ClaimStore, fetcher DepositFetcher, settings Settings, asset, rewardCurrency string, historyLimit int, logger *zap.Logger) *Engine {
	return &Engine{
		store:          store,
		exchange:       fetcher,
		settings:       settings,
		asset:          asset,
		rewardCurrency: rewardCurrency,
		historyLimit:   historyLimit,
		logger:         logger,
	}
}

// Canonicalize trims the raw identifier and returns both candidate forms: the
// canonical (prefixed) form and the trimmed input.
func Canonicalize(raw string) (canonical, trimmed string, err error) {
	trimmed = strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "", ErrEmptyIdentifier
	}
	if strings.HasPrefix(trimmed, CanonicalPrefix) {
		return trimmed, trimmed, nil
	}
	return CanonicalPrefix + trimmed, trimmed, nil
}

// Verify runs the claim protocol: duplicate check against both identifier
// forms, upstream match, minimum-deposit gate, reward computation at the
// current rate, then an atomic insert. A lost insert race is answered with
// the winning row, never surfaced as a storage error.
func (e *Engine) Verify(ctx context.Context, rawIdentifier string) (*Result, error) {
	canonical, trimmed, err := Canonicalize(rawIdentifier)
	if err != nil {
		return nil, err
	}

	existing, err := e.store.FindByIdentifiers(canonical, trimmed)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return alreadySettled(existing), nil
	}

	records, err := e.exchange.DepositHistory(ctx, e.asset, e.historyLimit)
	if err != nil {
		if errors.Is(err, exchange.ErrNotConfigured) {
			return nil, err
		}
		if exchange.IsRegionRestricted(err) {
			e.logger.Warn("Deposit history unavailable for this region", zap.Error(err))
			return &Result{
				Outcome:    OutcomeRegionRestricted,
				Identifier: canonical,
				Message:    upstreamMessage(err),
			}, nil
		}
		e.logger.Error("Failed to fetch deposit history", zap.Error(err))
		return &Result{
			Outcome:    OutcomeVerificationError,
			Identifier: canonical,
			Message:    upstreamMessage(err),
		}, nil
	}

	// First confirmed record matching either form wins; ties follow
	// upstream order.
	var match *model.DepositRecord
	for i := range records {
		if !records[i].Confirmed() {
			continue
		}
		if records[i].TxID == canonical || records[i].TxID == trimmed {
			match = &records[i]
			break
		}
	}

	if match == nil {
		return &Result{Outcome: OutcomeNotYetConfirmed, Identifier: canonical}, nil
	}

	minDeposit, err := e.settings.MinDeposit()
	if err != nil {
		return nil, err
	}
	if minDeposit.IsPositive() && match.Amount.LessThan(minDeposit) {
		e.logger.Info("Confirmed deposit below minimum",
			zap.String("identifier", canonical),
			zap.String("amount", match.Amount.String()),
			zap.String("min_deposit", minDeposit.String()))
		return &Result{
			Outcome:    OutcomeBelowMinimum,
			Identifier: canonical,
			Amount:     match.Amount,
			MinDeposit: minDeposit,
		}, nil
	}

	// The rate is read at successful-match time, not claim-submission time.
	rate, err := e.settings.ExchangeRate()
	if err != nil {
		return nil, err
	}
	reward := match.Amount.Mul(rate)

	claim := model.SettledClaim{
		Identifier:   canonical,
		Asset:        e.asset,
		Amount:       match.Amount,
		RewardAmount: reward,
		SettledAt:    match.ConfirmedAt(),
	}
	event := model.RewardOutboxEvent{
		EventID:        uuid.NewString(),
		Identifier:     canonical,
		Asset:          e.asset,
		Amount:         match.Amount,
		RewardAmount:   reward,
		RewardCurrency: e.rewardCurrency,
		SettledAt:      match.ConfirmedAt(),
	}

	inserted, err := e.store.InsertSettledClaim(claim, event)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentifier) {
			// A concurrent submission settled this claim between the
			// duplicate check and the insert. Answer with its row.
			winner, findErr := e.store.FindByIdentifiers(canonical, trimmed)
			if findErr != nil {
				return nil, findErr
			}
			if winner == nil {
				return nil, fmt.Errorf("claim %s reported settled but no row found", canonical)
			}
			return alreadySettled(winner), nil
		}
		return nil, err
	}

	return &Result{
		Outcome:      OutcomeSettled,
		Identifier:   inserted.Identifier,
		Amount:       inserted.Amount,
		RewardAmount: inserted.RewardAmount,
		ConfirmedAt:  inserted.SettledAt,
	}, nil
}

func alreadySettled(claim *model.SettledClaim) *Result {
	return &Result{
		Outcome:      OutcomeAlreadySettled,
		Identifier:   claim.Identifier,
		Amount:       claim.Amount,
		RewardAmount: claim.RewardAmount,
		ConfirmedAt:  claim.SettledAt,
	}
}

func upstreamMessage(err error) string {
	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
