package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"settler/apps/settler/internal/model"
	"settler/apps/settler/internal/repository"
	"settler/apps/settler/internal/settings"
	"settler/apps/settler/internal/settlement"
	"settler/apps/settler/internal/withdrawal"
)

type stubClaimStore struct {
	mu     sync.Mutex
	claims map[string]model.SettledClaim
}

func (s *stubClaimStore) FindByIdentifiers(identifiers ...string) (*model.SettledClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range identifiers {
		if claim, ok := s.claims[id]; ok {
			found := claim
			return &found, nil
		}
	}
	return nil, nil
}

func (s *stubClaimStore) InsertSettledClaim(claim model.SettledClaim, event model.RewardOutboxEvent) (*model.SettledClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.Identifier]; ok {
		return nil, repository.ErrDuplicateIdentifier
	}
	claim.ID = int64(len(s.claims) + 1)
	s.claims[claim.Identifier] = claim
	inserted := claim
	return &inserted, nil
}

type stubFetcher struct {
	records []model.DepositRecord
}

func (s *stubFetcher) DepositHistory(ctx context.Context, coin string, limit int) ([]model.DepositRecord, error) {
	return s.records, nil
}

type stubAccount struct {
	available    decimal.Decimal
	withdrawalID string
}

func (s *stubAccount) AvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return s.available, nil
}

func (s *stubAccount) SubmitWithdrawal(ctx context.Context, coin, net, address string, amount decimal.Decimal) (string, error) {
	return s.withdrawalID, nil
}

type stubSettingsStore struct {
	values map[string]string
}

func (s *stubSettingsStore) Get(key string) (string, bool, error) {
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *stubSettingsStore) Upsert(key, value string) error {
	s.values[key] = value
	return nil
}

func newTestServer(t *testing.T, production bool) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	store := &stubClaimStore{claims: make(map[string]model.SettledClaim)}
	fetcher := &stubFetcher{records: []model.DepositRecord{
		{
			TxID:       "344178838453",
			Coin:       "USDT",
			Amount:     decimal.NewFromInt(9),
			Status:     model.DepositStatusSuccess,
			InsertTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
			Network:    "TRX",
			Address:    "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8",
		},
	}}

	cache := settings.NewCache(&stubSettingsStore{values: map[string]string{
		settings.KeyExchangeRate: "150",
	}}, logger)

	claimEngine := settlement.NewEngine(store, fetcher, cache, "USDT", "KES", 100, logger)
	account := &stubAccount{available: decimal.NewFromInt(100), withdrawalID: "w-42"}
	withdrawalEngine := withdrawal.NewEngine(account, cache, "USDT", logger)

	server := NewServer(0, claimEngine, withdrawalEngine, cache, fetcher, "USDT", 100, production, logger)
	ts := httptest.NewServer(server.setupRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decodeBody(t, resp, &body)
	assert.True(t, body["ok"])
}

func TestRateEndpoints(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/rate")
	require.NoError(t, err)
	var current RateResponse
	decodeBody(t, resp, &current)
	assert.True(t, current.Rate.Equal(decimal.NewFromInt(150)))

	resp = postJSON(t, ts.URL+"/api/rate", map[string]interface{}{"rate": 175})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/rate")
	require.NoError(t, err)
	decodeBody(t, resp, &current)
	assert.True(t, current.Rate.Equal(decimal.NewFromInt(175)))

	resp = postJSON(t, ts.URL+"/api/rate", map[string]interface{}{"rate": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestThresholdEndpointsValidation(t *testing.T) {
	ts := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/min-deposit", map[string]interface{}{"minDepositAmount": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/min-deposit", map[string]interface{}{"minDepositAmount": 0})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/min-withdrawal", map[string]interface{}{"minWithdrawalAmount": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/min-withdrawal", map[string]interface{}{"minWithdrawalAmount": 20})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitClaim(t *testing.T) {
	ts := newTestServer(t, false)

	t.Run("blank txId rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/deposit/txid", map[string]string{"txId": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("settles confirmed deposit", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/deposit/txid", map[string]string{"txId": "344178838453"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body ClaimCompleteResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "complete", body.Status)
		assert.True(t, body.ConfirmedAmount.Equal(decimal.NewFromInt(9)))
		assert.True(t, body.RewardKes.Equal(decimal.NewFromInt(1350)))
	})

	t.Run("second claim answers already_used with 200", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/deposit/txid", map[string]string{"txId": "344178838453"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body ClaimFailedResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "failed", body.Status)
		assert.Equal(t, "already_used", body.Reason)
		require.NotNil(t, body.RewardKes)
		assert.True(t, body.RewardKes.Equal(decimal.NewFromInt(1350)))
	})

	t.Run("unknown txId is not_found", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/deposit/txid", map[string]string{"txId": "999999999999"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body ClaimFailedResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "failed", body.Status)
		assert.Equal(t, "not_found", body.Reason)
	})
}

func TestWithdrawEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	t.Run("missing address rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/withdraw", map[string]interface{}{"address": " "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("unsupported network rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/withdraw", map[string]interface{}{
			"address": "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8",
			"network": "BTC",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("submits withdrawal", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/withdraw", map[string]interface{}{
			"address": "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8",
			"amount":  25,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body WithdrawCompleteResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "complete", body.Status)
		assert.Equal(t, "w-42", body.WithdrawalID)
		assert.Equal(t, "TRX", body.Network)
	})
}

func TestDebugDepositsEndpoint(t *testing.T) {
	t.Run("hidden in production", func(t *testing.T) {
		ts := newTestServer(t, true)
		resp, err := http.Get(ts.URL + "/api/debug/deposits")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("redacts addresses outside production", func(t *testing.T) {
		ts := newTestServer(t, false)
		resp, err := http.Get(ts.URL + "/api/debug/deposits")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var records []DebugDepositRecord
		decodeBody(t, resp, &records)
		require.Len(t, records, 1)
		assert.Equal(t, "TJRa...RTv8", records[0].Address)
	})
}
