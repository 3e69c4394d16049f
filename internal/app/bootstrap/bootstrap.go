package bootstrap

import (
	"fmt"
	"time"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/app/service"
	"wallet_portfolio/internal/infrastructure/configloader"
	"wallet_portfolio/internal/infrastructure/fetchcache"
	"wallet_portfolio/internal/infrastructure/httpclient"
	networkdefinition "wallet_portfolio/internal/infrastructure/network/definition"
	"wallet_portfolio/internal/infrastructure/pricestream"
	"wallet_portfolio/internal/pkg/retry"

	"go.uber.org/zap"
)

// NewNetworkProvider builds the network table: the predefined networks plus cfg.Networks.
func NewNetworkProvider(cfg *configloader.Config, log port.Logger) *networkdefinition.NetworkDefinitionProvider {
	return networkdefinition.NewNetworkDefinitionProvider(log, cfg.Networks)
}

// NewPortfolioService wires the fetcher, the price stream and the coordinator from configuration.
// It fails with entity.ErrInvalidCredentials when no API key is configured.
func NewPortfolioService(
	cfg *configloader.Config,
	networks port.NetworkDefinitionProvider,
	listener port.PortfolioListener,
	log port.Logger,
	zapLogger *zap.Logger,
) (*service.PortfolioService, error) {
	policy := retry.New(
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithInitialDelay(cfg.InitialRetryDelay()),
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			log.Warn("Retrying portfolio request", "attempt", attempt, "delay", delay, "error", err)
		}),
	)

	client, err := httpclient.NewAlchemyClient(httpclient.AlchemyClientConfig{
		APIKey:            cfg.Alchemy.APIKey,
		DataBaseURL:       cfg.Alchemy.DataBaseURL,
		NFTBaseURL:        cfg.Alchemy.NFTBaseURL,
		Networks:          cfg.Alchemy.Networks,
		MaxTokens:         cfg.Alchemy.MaxTokens,
		NFTPageSize:       cfg.Alchemy.NFTPageSize,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, networks, policy, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio client: %w", err)
	}

	var fetcher port.PortfolioFetcher = client
	if cfg.Cache.Enabled {
		fetcher = fetchcache.Wrap(client, cfg.CacheTTL(), cfg.CacheCleanupInterval(), log)
		log.Info("Fetch cache enabled", "ttl", cfg.CacheTTL())
	}

	prices := pricestream.New(cfg.PriceStream.URL, networks, log,
		pricestream.WithCooldown(cfg.Cooldown()),
		pricestream.WithHandshakeTimeout(cfg.HandshakeTimeout()),
	)

	return service.NewPortfolioService(fetcher, prices, listener, log), nil
}
