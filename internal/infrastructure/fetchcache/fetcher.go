package fetchcache

import (
	"context"
	"strings"
	"time"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Fetcher caches successful fetch results per wallet for a short TTL.
// Failures are never cached, so a retry after an error always reaches the upstream.
type Fetcher struct {
	port.PortfolioFetcher
	cache  *cache.Cache
	sf     *singleflight.Group
	logger port.Logger
}

var (
	_ port.PortfolioFetcher = (*Fetcher)(nil)
	_ port.FetchInvalidator = (*Fetcher)(nil)
)

// Wrap decorates next with a TTL cache.
func Wrap(next port.PortfolioFetcher, ttl, cleanupInterval time.Duration, logger port.Logger) *Fetcher {
	return &Fetcher{
		PortfolioFetcher: next,
		cache:            cache.New(ttl, cleanupInterval),
		sf:               &singleflight.Group{},
		logger:           logger,
	}
}

// FetchTokenBalances implements port.PortfolioFetcher.
func (f *Fetcher) FetchTokenBalances(ctx context.Context, address string) ([]entity.Token, error) {
	key := tokensKey(address)
	if v, ok := f.cache.Get(key); ok {
		if tokens, ok := v.([]entity.Token); ok {
			metrics.CacheLookups.WithLabelValues("tokens", "hit").Inc()
			f.logger.Debug("Token balances served from cache", "address", address)
			return tokens, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("tokens", "miss").Inc()

	v, err, _ := f.sf.Do(key, func() (interface{}, error) {
		tokens, err := f.PortfolioFetcher.FetchTokenBalances(ctx, address)
		if err != nil {
			return nil, err
		}
		f.cache.SetDefault(key, tokens)
		return tokens, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Token), nil
}

// FetchNFTCollections implements port.PortfolioFetcher.
func (f *Fetcher) FetchNFTCollections(ctx context.Context, address string) ([]entity.NFTCollection, error) {
	key := nftsKey(address)
	if v, ok := f.cache.Get(key); ok {
		if collections, ok := v.([]entity.NFTCollection); ok {
			metrics.CacheLookups.WithLabelValues("nfts", "hit").Inc()
			f.logger.Debug("NFT collections served from cache", "address", address)
			return collections, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("nfts", "miss").Inc()

	v, err, _ := f.sf.Do(key, func() (interface{}, error) {
		collections, err := f.PortfolioFetcher.FetchNFTCollections(ctx, address)
		if err != nil {
			return nil, err
		}
		f.cache.SetDefault(key, collections)
		return collections, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.NFTCollection), nil
}

// Invalidate implements port.FetchInvalidator. It drops everything cached for address.
func (f *Fetcher) Invalidate(address string) {
	f.cache.Delete(tokensKey(address))
	f.cache.Delete(nftsKey(address))
}

func tokensKey(address string) string {
	return "tokens:" + strings.ToLower(strings.TrimSpace(address))
}

func nftsKey(address string) string {
	return "nfts:" + strings.ToLower(strings.TrimSpace(address))
}
