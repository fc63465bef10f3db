package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount marks user input that cannot be converted to a raw
// integer amount at the token's precision.
var ErrInvalidAmount = errors.New("invalid amount")

// ToDisplay renders a raw integer amount as a decimal string at the given
// precision. Negative values are passed through unmodified; the ledger is
// expected never to produce them.
func ToDisplay(raw *big.Int, decimals int32) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -decimals).String()
}

// ToRaw parses a human-entered decimal string into a raw integer amount.
// The input must be a non-negative number with no fractional digits beyond
// the token's precision.
func ToRaw(display string, decimals int32) (*big.Int, error) {
	trimmed := strings.TrimSpace(display)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, display)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, display)
	}
	if -d.Exponent() > decimals {
		return nil, fmt.Errorf("%w: %q exceeds %d decimal places", ErrInvalidAmount, display, decimals)
	}

	return d.Shift(decimals).BigInt(), nil
}
