package restapi

import "wallet_portfolio/internal/domain/entity"

// TokenView is a held token with its display fields.
type TokenView struct {
	entity.Token
	FormattedBalance string `json:"formattedBalance"`
	TruncatedAddress string `json:"truncatedAddress"`
	IsNative         bool   `json:"isNative"`
}

// NFTCollectionView is an NFT collection with its display fields.
type NFTCollectionView struct {
	entity.NFTCollection
	FormattedFloorPrice string `json:"formattedFloorPrice,omitempty"`
}

// PortfolioView is the JSON form of a portfolio state.
type PortfolioView struct {
	Status         entity.LoadStatus   `json:"status"`
	Address        string              `json:"address,omitempty"`
	Message        string              `json:"message,omitempty"`
	Tokens         []TokenView         `json:"tokens"`
	NFTCollections []NFTCollectionView `json:"nftCollections"`
}

// PriceView is one token's latest quote.
type PriceView struct {
	Raw       float64 `json:"raw"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// PricesView maps token id to its latest quote.
type PricesView struct {
	Prices map[string]PriceView `json:"prices"`
}

// NetworkView is a supported network as listed on /health.
type NetworkView struct {
	Identifier string `json:"identifier"`
	ChainID    int    `json:"chainId"`
	Name       string `json:"name"`
}

func newPortfolioView(state entity.PortfolioState) PortfolioView {
	view := PortfolioView{
		Status:         state.Status,
		Address:        state.Address,
		Message:        state.Message,
		Tokens:         []TokenView{},
		NFTCollections: []NFTCollectionView{},
	}
	if state.Data == nil {
		return view
	}
	for _, token := range state.Data.Tokens {
		view.Tokens = append(view.Tokens, TokenView{
			Token:            token,
			FormattedBalance: token.FormattedBalance(),
			TruncatedAddress: token.TruncatedAddress(),
			IsNative:         token.IsNative(),
		})
	}
	for _, collection := range state.Data.NFTCollections {
		floor, _ := collection.FormattedFloorPrice()
		view.NFTCollections = append(view.NFTCollections, NFTCollectionView{
			NFTCollection:       collection,
			FormattedFloorPrice: floor,
		})
	}
	return view
}

func newPricesView(snapshot entity.PriceSnapshot) PricesView {
	view := PricesView{Prices: make(map[string]PriceView, len(snapshot))}
	for id, price := range snapshot {
		view.Prices[id] = PriceView{Raw: price.Raw, Currency: price.Currency, Formatted: price.FormattedUSD()}
	}
	return view
}
