package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
)

// DefaultChainID is used for networks missing from the table.
const DefaultChainID = 1

// NetworkDefinitionProvider provides network definitions keyed by portfolio API identifier.
type NetworkDefinitionProvider struct {
	logger  port.Logger
	allDefs map[string]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		Identifier:     "eth-mainnet",
		ChainID:        1,
		Name:           "Ethereum Mainnet",
		NativeName:     "Ethereum",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	}
	Polygon = entity.NetworkDefinition{
		Identifier:     "polygon-mainnet",
		ChainID:        137,
		Name:           "Polygon PoS",
		NativeName:     "Polygon",
		NativeSymbol:   "POL",
		NativeDecimals: 18,
	}
	Arbitrum = entity.NetworkDefinition{
		Identifier:     "arb-mainnet",
		ChainID:        42161,
		Name:           "Arbitrum One",
		NativeName:     "Ethereum",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	}
	Optimism = entity.NetworkDefinition{
		Identifier:     "opt-mainnet",
		ChainID:        10,
		Name:           "OP Mainnet",
		NativeName:     "Ethereum",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	}
	Base = entity.NetworkDefinition{
		Identifier:     "base-mainnet",
		ChainID:        8453,
		Name:           "Base Mainnet",
		NativeName:     "Ethereum",
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = []entity.NetworkDefinition{Ethereum, Polygon, Arbitrum, Optimism, Base}

// NewNetworkDefinitionProvider creates a provider with the built-in table extended by extra.
// Extra entries with an identifier already known override the built-in definition.
func NewNetworkDefinitionProvider(log port.Logger, extra []entity.NetworkDefinition) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:  log,
		allDefs: make(map[string]entity.NetworkDefinition, len(allKnownDefinitions)+len(extra)),
	}
	for _, def := range allKnownDefinitions {
		p.allDefs[def.Identifier] = def
	}

	for _, def := range extra {
		identifier := strings.ToLower(strings.TrimSpace(def.Identifier))
		if identifier == "" || def.ChainID <= 0 {
			p.logger.Warn("Skipping network definition without identifier or chain id", "identifier", def.Identifier, "chainId", def.ChainID)
			continue
		}
		def.Identifier = identifier
		if def.NativeDecimals <= 0 {
			def.NativeDecimals = 18
		}
		if _, exists := p.allDefs[identifier]; exists {
			p.logger.Info(fmt.Sprintf("Network '%s' overridden by configuration.", identifier))
		}
		p.allDefs[identifier] = def
	}

	p.logger.Debug("NetworkDefinitionProvider initialized", "networks", len(p.allDefs))
	return p
}

// GetAllNetworkDefinitions returns every known definition ordered by chain id.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.allDefs))
	for _, def := range p.allDefs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.allDefs[strings.ToLower(strings.TrimSpace(identifier))]
	return def, ok
}

// ChainID resolves the price-protocol chain id of a network. Unknown networks map to DefaultChainID.
func (p *NetworkDefinitionProvider) ChainID(identifier string) int {
	if def, ok := p.GetNetworkDefinitionByName(identifier); ok {
		return def.ChainID
	}
	return DefaultChainID
}

// NativeFallback returns the definition used for a network's native asset metadata.
// Unknown networks fall back to Ethereum.
func (p *NetworkDefinitionProvider) NativeFallback(identifier string) entity.NetworkDefinition {
	if def, ok := p.GetNetworkDefinitionByName(identifier); ok {
		return def
	}
	return Ethereum
}
