package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	sixteen          = decimal.NewFromInt(16)
	displayThreshold = decimal.New(1, -4) // 0.0001
	thousand         = decimal.NewFromInt(1_000)
	million          = decimal.NewFromInt(1_000_000)
)

// ConvertBalance converts a raw on-chain balance into its display magnitude.
// raw is either a 0x-prefixed hex integer or a plain base-10 integer of any length; the value is
// divided by 10^decimals with exact decimal arithmetic. Malformed input is a zero balance, not an error.
// Example: raw="0x14D1120D7B160000", decimals=18 => 1.5, "1.5000"
func ConvertBalance(raw string, decimals int) (decimal.Decimal, string) {
	amount, ok := parseRawAmount(raw)
	if !ok {
		return decimal.Zero, "0"
	}
	if decimals < 0 {
		decimals = 0
	}
	value := amount.Shift(-int32(decimals))
	return value, FormatBalance(value)
}

// FormatBalance applies the display policy to an already scaled value.
func FormatBalance(value decimal.Decimal) string {
	switch {
	case value.Sign() <= 0:
		return "0"
	case value.LessThan(displayThreshold):
		return "<0.0001"
	case value.GreaterThanOrEqual(million):
		return value.Div(million).StringFixed(2) + "M"
	case value.GreaterThanOrEqual(thousand):
		return value.StringFixed(2)
	default:
		return value.StringFixed(4)
	}
}

// IsZeroBalance reports whether raw represents a zero balance. Empty hex digits count as zero.
func IsZeroBalance(raw string) bool {
	if hexDigits, ok := cutHexPrefix(raw); ok {
		return strings.Trim(hexDigits, "0") == ""
	}
	amount, ok := parseRawAmount(raw)
	return !ok || amount.IsZero()
}

func parseRawAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if hexDigits, ok := cutHexPrefix(raw); ok {
		return parseHex(hexDigits)
	}
	return parseDecimalInteger(raw)
}

func cutHexPrefix(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		return raw[2:], true
	}
	return "", false
}

// parseHex accumulates one digit at a time so 256-bit values never pass through a float.
func parseHex(digits string) (decimal.Decimal, bool) {
	if digits == "" {
		return decimal.Zero, false
	}
	acc := decimal.Zero
	for i := 0; i < len(digits); i++ {
		d, ok := hexDigit(digits[i])
		if !ok {
			return decimal.Zero, false
		}
		acc = acc.Mul(sixteen).Add(decimal.NewFromInt(int64(d)))
	}
	return acc, true
}

func parseDecimalInteger(digits string) (decimal.Decimal, bool) {
	if digits == "" {
		return decimal.Zero, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return decimal.Zero, false
		}
	}
	value, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
