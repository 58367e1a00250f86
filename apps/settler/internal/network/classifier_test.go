package network

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    Network
		wantErr bool
	}{
		{
			name:    "tron address",
			address: "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8",
			want:    Tron,
		},
		{
			name:    "solana address",
			address: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			want:    Solana,
		},
		{
			name:    "short base58 string is solana",
			address: strings.Repeat("A", 32),
			want:    Solana,
		},
		{
			name:    "ethereum address matches neither",
			address: "0x0B8fA6F76eB75ae3a4ca28eb3020DFC4503F2136",
			wantErr: true,
		},
		{
			name:    "tron-length string with excluded characters",
			address: "T000000000000000000000000000000000",
			wantErr: true,
		},
		{
			name:    "too short",
			address: "TJRabPrwbZy45",
			wantErr: true,
		},
		{
			name:    "too long for both families",
			address: strings.Repeat("A", 45),
			wantErr: true,
		},
		{
			name:    "empty",
			address: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.address)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnrecognizedAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(Tron))
	assert.True(t, Supported(Solana))
	assert.False(t, Supported(Network("BTC")))
	assert.False(t, Supported(Network("")))
}
