package entity

import "fmt"

// NFTCollection is an NFT contract in which the wallet owns at least one token.
type NFTCollection struct {
	ID              string   `json:"id"`
	Network         string   `json:"network"`
	ContractAddress string   `json:"contractAddress"`
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	TokenType       string   `json:"tokenType"`
	OwnedCount      int      `json:"ownedCount"`
	FloorPrice      *float64 `json:"floorPrice,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
}

// FormattedFloorPrice renders the floor price in ETH. The bool is false when no floor price is known.
func (c NFTCollection) FormattedFloorPrice() (string, bool) {
	if c.FloorPrice == nil {
		return "", false
	}
	return fmt.Sprintf("%.2f ETH", *c.FloorPrice), true
}
