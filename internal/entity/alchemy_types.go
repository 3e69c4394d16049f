package entity

// TokensByAddressRequest is the body of the Portfolio API tokens/by-address call.
type TokensByAddressRequest struct {
	Addresses           []AddressNetworks `json:"addresses"`
	WithMetadata        bool              `json:"withMetadata"`
	WithPrices          bool              `json:"withPrices"`
	IncludeNativeTokens bool              `json:"includeNativeTokens"`
	IncludeErc20Tokens  bool              `json:"includeErc20Tokens"`
}

// AddressNetworks pairs a wallet address with the networks to query.
type AddressNetworks struct {
	Address  string   `json:"address"`
	Networks []string `json:"networks"`
}

// TokensByAddressResponse wraps the tokens/by-address result.
type TokensByAddressResponse struct {
	Data TokensByAddressData `json:"data"`
}

// TokensByAddressData holds one page of token balances.
type TokensByAddressData struct {
	Tokens  []TokenEntry `json:"tokens"`
	PageKey *string      `json:"pageKey"`
}

// TokenEntry is one balance row. A nil TokenAddress marks the network's native currency.
type TokenEntry struct {
	Network       string         `json:"network"`
	Address       string         `json:"address"`
	TokenAddress  *string        `json:"tokenAddress"`
	TokenBalance  string         `json:"tokenBalance"`
	TokenMetadata *TokenMetadata `json:"tokenMetadata"`
}

// TokenMetadata may carry nulls and empty strings; both count as absent.
type TokenMetadata struct {
	Name     *string `json:"name"`
	Symbol   *string `json:"symbol"`
	Decimals *int    `json:"decimals"`
	Logo     *string `json:"logo"`
}

// ContractsForOwnerResponse is the NFT API getContractsForOwner result.
type ContractsForOwnerResponse struct {
	Contracts []ContractEntry `json:"contracts"`
	PageKey   *string         `json:"pageKey"`
}

// ContractEntry is an NFT contract the owner holds tokens of.
type ContractEntry struct {
	Address                string           `json:"address"`
	Name                   *string          `json:"name"`
	Symbol                 *string          `json:"symbol"`
	TokenType              *string          `json:"tokenType"`
	NumDistinctTokensOwned *string          `json:"numDistinctTokensOwned"`
	IsSpam                 *bool            `json:"isSpam"`
	TotalBalance           *string          `json:"totalBalance"`
	OpenSeaMetadata        *OpenSeaMetadata `json:"openSeaMetadata"`
}

// OpenSeaMetadata is the marketplace metadata attached to a contract.
type OpenSeaMetadata struct {
	FloorPrice     *float64 `json:"floorPrice"`
	CollectionName *string  `json:"collectionName"`
	ImageURL       *string  `json:"imageUrl"`
}
