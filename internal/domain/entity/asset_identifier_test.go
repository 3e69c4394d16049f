package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "native", want: ZeroAddress},
		{in: "NATIVE", want: ZeroAddress},
		{in: "", want: ZeroAddress},
		{in: "  ", want: ZeroAddress},
		{in: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", want: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		{in: "a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", want: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		{in: "0xABC", want: "0xabc"},
		{in: "So11111111111111111111111111111111111111112", want: "so11111111111111111111111111111111111111112"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalAddress(tt.in))
		})
	}
	assert.Equal(t, "0x0000000000000000000000000000000000000000", ZeroAddress)
}

func TestAssetIdentifierMatchesAcrossCase(t *testing.T) {
	subscribed := NewAssetIdentifier(1, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	received := NewAssetIdentifier(1, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	assert.Equal(t, subscribed, received)

	lookup := map[AssetIdentifier]string{subscribed: "usdc"}
	assert.Equal(t, "usdc", lookup[received])

	assert.NotEqual(t, NewAssetIdentifier(1, "native"), NewAssetIdentifier(137, "native"))
}
