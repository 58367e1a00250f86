package withdrawal

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"settler/apps/settler/internal/exchange"
	"settler/apps/settler/internal/network"
)

const (
	tronAddress   = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"
	solanaAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

type fakeAccount struct {
	available  decimal.Decimal
	balanceErr error

	withdrawalID string
	submitErr    error

	submittedCoin    string
	submittedNetwork string
	submittedAddress string
	submittedAmount  decimal.Decimal
	submitCalls      int
}

func (f *fakeAccount) AvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.available, nil
}

func (f *fakeAccount) SubmitWithdrawal(ctx context.Context, coin, net, address string, amount decimal.Decimal) (string, error) {
	f.submitCalls++
	f.submittedCoin = coin
	f.submittedNetwork = net
	f.submittedAddress = address
	f.submittedAmount = amount
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.withdrawalID, nil
}

type fakeMinWithdrawal struct {
	min decimal.Decimal
}

func (f *fakeMinWithdrawal) MinWithdrawal() (decimal.Decimal, error) {
	return f.min, nil
}

func newTestEngine(account *fakeAccount, min int64) *Engine {
	return NewEngine(account, &fakeMinWithdrawal{min: decimal.NewFromInt(min)}, "USDT", zap.NewNop())
}

func amountPtr(value string) *decimal.Decimal {
	amount := decimal.RequireFromString(value)
	return &amount
}

func TestWithdrawValidation(t *testing.T) {
	engine := newTestEngine(&fakeAccount{available: decimal.NewFromInt(100)}, 10)

	t.Run("blank address", func(t *testing.T) {
		_, err := engine.Withdraw(context.Background(), "   ", nil, "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("unsupported network", func(t *testing.T) {
		_, err := engine.Withdraw(context.Background(), tronAddress, nil, network.Network("BTC"))
		assert.ErrorIs(t, err, ErrInvalidNetwork)
	})

	t.Run("unclassifiable address", func(t *testing.T) {
		_, err := engine.Withdraw(context.Background(), "0xdeadbeef", nil, "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := engine.Withdraw(context.Background(), tronAddress, amountPtr("0"), "")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = engine.Withdraw(context.Background(), tronAddress, amountPtr("-3"), "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestWithdrawClassifiesNetworkFromAddress(t *testing.T) {
	account := &fakeAccount{available: decimal.NewFromInt(100), withdrawalID: "w-1"}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), solanaAddress, amountPtr("25"), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeSubmitted, result.Outcome)
	assert.Equal(t, network.Solana, result.Network)
	assert.Equal(t, "SOL", account.submittedNetwork)
}

func TestWithdrawZeroBalance(t *testing.T) {
	engine := newTestEngine(&fakeAccount{available: decimal.Zero}, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, nil, "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInsufficientFunds, result.Outcome)
	assert.True(t, result.Available.IsZero())
}

func TestWithdrawFullBalanceBelowMinimum(t *testing.T) {
	// No amount given: the full available balance of 5 is below the
	// minimum of 10.
	account := &fakeAccount{available: decimal.NewFromInt(5)}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, nil, "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeBelowMinimum, result.Outcome)
	assert.True(t, result.MinWithdrawal.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 0, account.submitCalls)
}

func TestWithdrawDefaultsToFullBalance(t *testing.T) {
	account := &fakeAccount{available: decimal.NewFromInt(50), withdrawalID: "w-2"}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, nil, "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeSubmitted, result.Outcome)
	assert.Equal(t, "w-2", result.WithdrawalID)
	assert.True(t, account.submittedAmount.Equal(decimal.NewFromInt(50)))
}

func TestWithdrawAmountExceedsAvailable(t *testing.T) {
	account := &fakeAccount{available: decimal.NewFromInt(50)}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, amountPtr("80"), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInsufficientFunds, result.Outcome)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(80)))
	assert.True(t, result.Available.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 0, account.submitCalls)
}

func TestWithdrawSubmits(t *testing.T) {
	account := &fakeAccount{available: decimal.NewFromInt(100), withdrawalID: "prov-123"}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, amountPtr("40"), network.Tron)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSubmitted, result.Outcome)
	assert.Equal(t, "prov-123", result.WithdrawalID)
	assert.Equal(t, tronAddress, result.Address)
	assert.Equal(t, network.Tron, result.Network)
	assert.Equal(t, "USDT", account.submittedCoin)
	assert.Equal(t, tronAddress, account.submittedAddress)
}

func TestWithdrawNormalizesBalanceErrors(t *testing.T) {
	account := &fakeAccount{
		available: decimal.NewFromInt(100),
		submitErr: &exchange.APIError{Status: 400, Code: -4026, Message: "Insufficient Balance."},
	}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, amountPtr("40"), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeInsufficientFunds, result.Outcome)
	assert.Equal(t, "Insufficient Balance.", result.Message)
}

func TestWithdrawUpstreamFailure(t *testing.T) {
	account := &fakeAccount{
		available: decimal.NewFromInt(100),
		submitErr: &exchange.APIError{Status: 400, Code: -3022, Message: "Withdrawals are disabled for this account."},
	}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, amountPtr("40"), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeError, result.Outcome)
	assert.Equal(t, "Withdrawals are disabled for this account.", result.Message)
}

func TestWithdrawBalanceFetchFailure(t *testing.T) {
	account := &fakeAccount{
		balanceErr: &exchange.APIError{Status: 500, Message: "Internal error."},
	}
	engine := newTestEngine(account, 10)

	result, err := engine.Withdraw(context.Background(), tronAddress, nil, "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeError, result.Outcome)
}

func TestWithdrawNotConfigured(t *testing.T) {
	account := &fakeAccount{balanceErr: exchange.ErrNotConfigured}
	engine := newTestEngine(account, 10)

	_, err := engine.Withdraw(context.Background(), tronAddress, nil, "")
	require.ErrorIs(t, err, exchange.ErrNotConfigured)
}
