package main

import (
	"bytes"
	"testing"

	"wallet_portfolio/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	floor := 12.5
	p.OnPortfolioState(entity.PortfolioState{Status: entity.StatusLoading, Address: "0xW"})
	p.OnPortfolioState(entity.PortfolioState{Status: entity.StatusLoaded, Address: "0xW", Data: &entity.PortfolioData{
		Tokens: []entity.Token{{ID: "eth-mainnet-native", TokenAddress: "native", Name: "Ethereum", Symbol: "ETH", Decimals: 18, RawBalance: "0x14D1120D7B160000"}},
		NFTCollections: []entity.NFTCollection{
			{Name: "Azuki", TokenType: "ERC721", OwnedCount: 1},
			{Name: "Bored Ape Yacht Club", TokenType: "ERC721", OwnedCount: 2, FloorPrice: &floor},
		},
	}})
	p.OnPriceSnapshot(entity.PriceSnapshot{"eth-mainnet-native": {Raw: 3000, Currency: "USD"}})

	out := buf.String()
	assert.Contains(t, out, "Loading portfolio for 0xW...")
	assert.Contains(t, out, "1.5000")
	assert.Contains(t, out, "Native Token")
	assert.Contains(t, out, "12.50 ETH")
	assert.Contains(t, out, "$3000.00")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Bored Ape")), bytes.Index(buf.Bytes(), []byte("Azuki")))

	buf.Reset()
	p.OnPortfolioState(entity.PortfolioState{Status: entity.StatusError, Message: "Network request failed. Please try again."})
	assert.Equal(t, "Error: Network request failed. Please try again.\n", buf.String())
}
