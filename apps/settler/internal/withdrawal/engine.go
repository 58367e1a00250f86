package withdrawal

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/network"
)

// Validation errors, rejected before any I/O.
var (
	ErrInvalidAddress = errors.New("withdrawal address is invalid")
	ErrInvalidNetwork = errors.New("withdrawal network is not supported")
	ErrInvalidAmount  = errors.New("withdrawal amount must be positive")
)

type Outcome string

const (
	OutcomeSubmitted         Outcome = "submitted"
	OutcomeBelowMinimum      Outcome = "below_minimum"
	OutcomeInsufficientFunds Outcome = "insufficient_funds"
	OutcomeError             Outcome = "withdrawal_error"
)

// Result is the outcome of a withdrawal attempt. WithdrawalID is set for
// Submitted; Available for InsufficientFunds; MinWithdrawal for BelowMinimum.
type Result struct {
	Outcome       Outcome
	WithdrawalID  string
	Amount        decimal.Decimal
	Address       string
	Network       network.Network
	Available     decimal.Decimal
	MinWithdrawal decimal.Decimal
	Message       string
}

// ExchangeAccount covers the two upstream calls the withdrawal path needs.
type ExchangeAccount interface {
	AvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	SubmitWithdrawal(ctx context.Context, coin, network, address string, amount decimal.Decimal) (string, error)
}

// Settings provides the minimum-withdrawal gate.
type Settings interface {
	MinWithdrawal() (decimal.Decimal, error)
}

type Engine struct {
	exchange ExchangeAccount
	settings Settings
	asset    string
	logger   *zap.Logger
}

func NewEngine(account ExchangeAccount, settings Settings, asset string, logger *zap.Logger) *Engine {
	return &Engine{
		exchange: account,
		settings: settings,
		asset:    asset,
		logger:   logger,
	}
}

// Withdraw validates the request, resolves the amount (full available balance
// when omitted), gates against the minimum-withdrawal threshold and the
// available balance, then submits. No local withdrawal ledger is kept; the
// exchange is the system of record.
func (e *Engine) Withdraw(ctx context.Context, address string, amount *decimal.Decimal, net network.Network) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidAddress
	}

	if net != "" {
		if !network.Supported(net) {
			return nil, ErrInvalidNetwork
		}
	} else {
		classified, err := network.Classify(address)
		if err != nil {
			return nil, ErrInvalidAddress
		}
		net = classified
	}

	if amount != nil && amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	available, err := e.exchange.AvailableBalance(ctx, e.asset)
	if err != nil {
		if errors.Is(err, exchange.ErrNotConfigured) {
			return nil, err
		}
		e.logger.Error("Failed to fetch available balance", zap.Error(err))
		return &Result{
			Outcome: OutcomeError,
			Address: address,
			Network: net,
			Message: upstreamMessage(err),
		}, nil
	}

	if available.LessThanOrEqual(decimal.Zero) {
		return &Result{
			Outcome:   OutcomeInsufficientFunds,
			Address:   address,
			Network:   net,
			Available: decimal.Zero,
		}, nil
	}

	resolved := available
	if amount != nil {
		resolved = *amount
	}

	minWithdrawal, err := e.settings.MinWithdrawal()
	if err != nil {
		return nil, err
	}
	if resolved.LessThan(minWithdrawal) {
		return &Result{
			Outcome:       OutcomeBelowMinimum,
			Amount:        resolved,
			Address:       address,
			Network:       net,
			MinWithdrawal: minWithdrawal,
		}, nil
	}

	if resolved.GreaterThan(available) {
		return &Result{
			Outcome:   OutcomeInsufficientFunds,
			Amount:    resolved,
			Address:   address,
			Network:   net,
			Available: available,
		}, nil
	}

	withdrawalID, err := e.exchange.SubmitWithdrawal(ctx, e.asset, string(net), address, resolved)
	if err != nil {
		if errors.Is(err, exchange.ErrNotConfigured) {
			return nil, err
		}
		message := upstreamMessage(err)
		// The exchange reports a balance shortfall only at submission
		// time for some account types; normalize it.
		if isBalanceMessage(message) {
			e.logger.Warn("Withdrawal rejected for insufficient balance",
				zap.String("address", address),
				zap.String("amount", resolved.String()))
			return &Result{
				Outcome:   OutcomeInsufficientFunds,
				Amount:    resolved,
				Address:   address,
				Network:   net,
				Available: available,
				Message:   message,
			}, nil
		}
		e.logger.Error("Withdrawal submission failed", zap.Error(err))
		return &Result{
			Outcome: OutcomeError,
			Amount:  resolved,
			Address: address,
			Network: net,
			Message: message,
		}, nil
	}

	e.logger.Info("Submitted withdrawal",
		zap.String("withdrawal_id", withdrawalID),
		zap.String("address", address),
		zap.String("network", string(net)),
		zap.String("amount", resolved.String()))

	return &Result{
		Outcome:      OutcomeSubmitted,
		WithdrawalID: withdrawalID,
		Amount:       resolved,
		Address:      address,
		Network:      net,
	}, nil
}

func isBalanceMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "balance") ||
		strings.Contains(lower, "insufficient") ||
		strings.Contains(lower, "fund")
}

func upstreamMessage(err error) string {
	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
