package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"settler/apps/settler/internal/model"
)

// ErrNotConfigured is returned before any network I/O when API credentials
// are missing.
var ErrNotConfigured = errors.New("exchange API credentials are not configured")

const (
	requestTimeout = 10 * time.Second
	recvWindowMs   = "5000"

	depositHistoryPath = "/sapi/v1/capital/deposit/hisrec"
	accountPath        = "/api/v3/account"
	withdrawPath       = "/sapi/v1/capital/withdraw/apply"

	// Deposits older than this are outside the matching window.
	depositHistoryWindow = 90 * 24 * time.Hour
)

// APIError is a non-2xx response from the exchange, carrying the upstream
// error code and message when the body was parseable.
type APIError struct {
	Status  int
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange API error (http %d, code %d): %s", e.Status, e.Code, e.Message)
}

// IsRegionRestricted reports whether err is the exchange refusing service for
// the caller's jurisdiction (HTTP 451).
func IsRegionRestricted(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnavailableForLegalReasons
}

// Client issues signed requests to the exchange REST API. Parameters are
// canonically ordered, signed with HMAC-SHA256 over the query string, and sent
// with the API key header plus a timestamp/recvWindow pair.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, secretKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// DepositHistory fetches the most recent deposit records for a coin, bounded
// by the matching window and the given limit.
func (c *Client) DepositHistory(ctx context.Context, coin string, limit int) ([]model.DepositRecord, error) {
	params := url.Values{}
	params.Set("coin", coin)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("startTime", strconv.FormatInt(time.Now().Add(-depositHistoryWindow).UnixMilli(), 10))

	body, err := c.signedRequest(ctx, http.MethodGet, depositHistoryPath, params)
	if err != nil {
		return nil, err
	}

	var records []model.DepositRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode deposit history: %w", err)
	}

	return records, nil
}

// AvailableBalance returns the free (spendable) balance for an asset. An asset
// absent from the account snapshot has a zero balance.
func (c *Client) AvailableBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	body, err := c.signedRequest(ctx, http.MethodGet, accountPath, url.Values{})
	if err != nil {
		return decimal.Zero, err
	}

	var account struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode account snapshot: %w", err)
	}

	for _, balance := range account.Balances {
		if balance.Asset == asset {
			free, err := decimal.NewFromString(balance.Free)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to parse balance for %s: %w", asset, err)
			}
			return free, nil
		}
	}

	return decimal.Zero, nil
}

// SubmitWithdrawal submits a withdrawal and returns the provider-assigned
// withdrawal id.
func (c *Client) SubmitWithdrawal(ctx context.Context, coin, network, address string, amount decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("coin", coin)
	params.Set("network", network)
	params.Set("address", address)
	params.Set("amount", amount.String())

	body, err := c.signedRequest(ctx, http.MethodPost, withdrawPath, params)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode withdrawal response: %w", err)
	}

	return result.ID, nil
}

func (c *Client) signedRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" || c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", recvWindowMs)

	query := c.sign(params)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build exchange request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange response: %w", err)
	}

	c.logger.Debug("Exchange request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// sign builds the canonical ascending-key query string and appends its
// HMAC-SHA256 hex digest as the signature parameter.
func (c *Client) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params.Get(key)))
	}
	payload := sb.String()

	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	return payload + "&signature=" + signature
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: strings.TrimSpace(string(body))}

	var parsed struct {
		Code int64  `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Msg != "" {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Msg
	}

	return apiErr
}
