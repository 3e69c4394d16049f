package port

import (
	"context"

	"wallet_portfolio/internal/domain/entity"
)

// PortfolioFetcher fetches a wallet's holdings from the upstream data API.
type PortfolioFetcher interface {
	// FetchTokenBalances returns the wallet's non-zero fungible balances, capped and in response order.
	FetchTokenBalances(ctx context.Context, address string) ([]entity.Token, error)

	// FetchNFTCollections returns the wallet's non-spam NFT collections.
	FetchNFTCollections(ctx context.Context, address string) ([]entity.NFTCollection, error)
}

// FetchInvalidator is implemented by fetchers that keep results between calls.
type FetchInvalidator interface {
	Invalidate(address string)
}

// PortfolioListener receives every state transition and price snapshot published by the coordinator.
// Calls come from the coordinator's goroutines; implementations must not block for long.
type PortfolioListener interface {
	OnPortfolioState(state entity.PortfolioState)
	OnPriceSnapshot(snapshot entity.PriceSnapshot)
}

// PortfolioCoordinator loads one wallet at a time and keeps its price stream running.
type PortfolioCoordinator interface {
	Load(ctx context.Context, address string) (entity.PortfolioState, error)
	Stop()
	State() entity.PortfolioState
	Snapshot() entity.PriceSnapshot
}
