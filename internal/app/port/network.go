package port

import "wallet_portfolio/internal/domain/entity"

// NetworkDefinitionProvider resolves the networks known to the portfolio API.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all known network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns the definition for an identifier such as "eth-mainnet".
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)

	// ChainID returns the numeric chain id for a network, defaulting to the primary chain.
	ChainID(identifier string) int

	// NativeFallback returns the definition whose native name, symbol and decimals
	// stand in for missing metadata of the network's base currency.
	NativeFallback(identifier string) entity.NetworkDefinition
}
