package entity

// NetworkDefinition describes a network as named by the portfolio API, with the numeric chain id
// used by the price protocol and fallbacks for the native asset when metadata is absent.
type NetworkDefinition struct {
	Identifier     string `json:"identifier" yaml:"identifier"` // e.g. "eth-mainnet"
	ChainID        int    `json:"chainId" yaml:"chainId"`
	Name           string `json:"name" yaml:"name"`
	NativeName     string `json:"nativeName" yaml:"nativeName"`
	NativeSymbol   string `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeDecimals int    `json:"nativeDecimals" yaml:"nativeDecimals"`
}
