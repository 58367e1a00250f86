package network

import (
	"errors"
	"regexp"
)

// Network is a supported withdrawal network family.
type Network string

const (
	Tron   Network = "TRX"
	Solana Network = "SOL"
)

// ErrUnrecognizedAddress is returned when an address matches neither
// supported network's shape.
var ErrUnrecognizedAddress = errors.New("address does not match any supported network")

var (
	// Tron base-58 addresses: fixed 34 characters starting with T, no
	// 0, O, I or l.
	tronAddress = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	// Solana base-58 public keys: 32 to 44 characters.
	solanaAddress = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// Supported reports whether a caller-supplied network tag names a known family.
func Supported(network Network) bool {
	return network == Tron || network == Solana
}

// Classify determines the network family from the address shape alone. Tron's
// fixed T-prefixed shape is checked first; the two families do not collide for
// real addresses.
func Classify(address string) (Network, error) {
	switch {
	case tronAddress.MatchString(address):
		return Tron, nil
	case solanaAddress.MatchString(address):
		return Solana, nil
	default:
		return "", ErrUnrecognizedAddress
	}
}
