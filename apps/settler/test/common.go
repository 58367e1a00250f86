package test

const (
	// Test server configuration
	BaseURL = "http://localhost:8080"

	// Known-good addresses for the two supported networks
	TestTronAddress   = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"
	TestSolanaAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

// ClaimRequest mirrors the POST /api/deposit/txid body
type ClaimRequest struct {
	TxID string `json:"txId"`
}

// WithdrawRequest mirrors the POST /api/withdraw body
type WithdrawRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount,omitempty"`
	Network string `json:"network,omitempty"`
}

// StatusResponse covers both complete and failed response bodies
type StatusResponse struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ErrorResponse mirrors validation error bodies
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
