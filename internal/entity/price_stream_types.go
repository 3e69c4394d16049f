package entity

import domain "wallet_portfolio/internal/domain/entity"

// SubscribeMessage is the outbound frame asking for a single asset's prices.
type SubscribeMessage struct {
	Type            string                 `json:"type"`
	AssetIdentifier domain.AssetIdentifier `json:"assetIdentifier"`
}

// NewSubscribeMessage builds a subscribe frame for an identifier.
func NewSubscribeMessage(id domain.AssetIdentifier) SubscribeMessage {
	return SubscribeMessage{Type: "subscribe", AssetIdentifier: id}
}

// PriceUpdateMessage is an inbound price frame.
type PriceUpdateMessage struct {
	AssetIdentifier domain.AssetIdentifier `json:"assetIdentifier"`
	Price           PricePayload           `json:"price"`
}

// PricePayload carries the quote. Only UsdValue is read; Raw is kept loose so a
// string-typed raw value does not reject the whole frame.
type PricePayload struct {
	Raw      any    `json:"raw"`
	Currency string `json:"currency"`
	UsdValue string `json:"usdValue"`
}
