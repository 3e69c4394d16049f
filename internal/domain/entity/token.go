package entity

import (
	"strings"

	"wallet_portfolio/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// NativeTokenAddress is the sentinel used instead of a contract address for a chain's base currency.
const NativeTokenAddress = "native"

// Token is a fungible token balance held by the wallet. Built once from a fetch response, never mutated.
type Token struct {
	ID           string `json:"id"`
	Network      string `json:"network"`
	TokenAddress string `json:"tokenAddress"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     int    `json:"decimals"`
	RawBalance   string `json:"rawBalance"`
	LogoURL      string `json:"logoUrl,omitempty"`
}

// TokenID builds the identity of a token on a network.
func TokenID(network, tokenAddress string) string {
	return network + "-" + tokenAddress
}

// IsNative reports whether the token is the network's base currency.
func (t Token) IsNative() bool {
	return strings.EqualFold(t.TokenAddress, NativeTokenAddress)
}

// Balance returns the exact display magnitude of the raw balance.
func (t Token) Balance() decimal.Decimal {
	value, _ := utils.ConvertBalance(t.RawBalance, t.Decimals)
	return value
}

// FormattedBalance returns the display string of the raw balance.
func (t Token) FormattedBalance() string {
	_, formatted := utils.ConvertBalance(t.RawBalance, t.Decimals)
	return formatted
}

// TruncatedAddress shortens the contract address for display.
func (t Token) TruncatedAddress() string {
	if t.IsNative() {
		return "Native Token"
	}
	if len(t.TokenAddress) <= 12 {
		return t.TokenAddress
	}
	return t.TokenAddress[:8] + "..." + t.TokenAddress[len(t.TokenAddress)-4:]
}
