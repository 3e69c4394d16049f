package entity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the canonical address of native assets in the price subscription protocol.
var ZeroAddress = strings.ToLower(common.Address{}.Hex())

// AssetIdentifier is the join key between held tokens and inbound price events.
// Always build it with NewAssetIdentifier so both sides share the same canonical form.
type AssetIdentifier struct {
	ChainID int    `json:"chainId"`
	Address string `json:"address"`
}

// NewAssetIdentifier returns the canonical identifier for an address on a chain.
func NewAssetIdentifier(chainID int, address string) AssetIdentifier {
	return AssetIdentifier{ChainID: chainID, Address: CanonicalAddress(address)}
}

// CanonicalAddress normalizes a token address for the price protocol:
// the native sentinel (or an empty address) becomes ZeroAddress, hex addresses are lower-cased.
func CanonicalAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" || strings.EqualFold(trimmed, NativeTokenAddress) {
		return ZeroAddress
	}
	if common.IsHexAddress(trimmed) {
		return strings.ToLower(common.HexToAddress(trimmed).Hex())
	}
	return strings.ToLower(trimmed)
}
