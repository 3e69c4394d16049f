package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
	dto "wallet_portfolio/internal/entity"
	"wallet_portfolio/internal/pkg/metrics"
	"wallet_portfolio/internal/pkg/retry"
	"wallet_portfolio/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	endpointTokens = "tokens_by_address"
	endpointNFTs   = "contracts_for_owner"

	// NFTNetwork is the network the NFT API base URL points at.
	NFTNetwork = "eth-mainnet"

	unknownTokenName      = "Unknown Token"
	unknownSymbol         = "???"
	unknownCollectionName = "Unknown Collection"
	defaultTokenType      = "ERC721"
	defaultDecimals       = 18
)

// AlchemyClientConfig holds the settings of AlchemyClient.
type AlchemyClientConfig struct {
	APIKey            string
	DataBaseURL       string
	NFTBaseURL        string
	Networks          []string
	MaxTokens         int
	NFTPageSize       int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// AlchemyClient fetches wallet holdings from the Alchemy Portfolio and NFT APIs.
type AlchemyClient struct {
	client          *fasthttp.Client
	cfg             AlchemyClientConfig
	limiter         *rate.Limiter
	retry           *retry.Policy
	networkProvider port.NetworkDefinitionProvider
	logger          *zap.Logger
}

var _ port.PortfolioFetcher = (*AlchemyClient)(nil)

// NewAlchemyClient creates a new AlchemyClient. An empty API key is a configuration error.
func NewAlchemyClient(cfg AlchemyClientConfig, np port.NetworkDefinitionProvider, policy *retry.Policy, logger *zap.Logger) (*AlchemyClient, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("alchemy api key is empty: %w", entity.ErrInvalidCredentials)
	}
	cfg.DataBaseURL = strings.TrimRight(cfg.DataBaseURL, "/")
	cfg.NFTBaseURL = strings.TrimRight(cfg.NFTBaseURL, "/")
	if len(cfg.Networks) == 0 {
		cfg.Networks = []string{NFTNetwork}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 20
	}
	if cfg.NFTPageSize <= 0 {
		cfg.NFTPageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if policy == nil {
		policy = retry.New()
	}

	return &AlchemyClient{
		client:          &fasthttp.Client{Name: "wallet_portfolio"},
		cfg:             cfg,
		limiter:         rate.NewLimiter(limit, cfg.Burst),
		retry:           policy,
		networkProvider: np,
		logger:          logger.Named("AlchemyClient"),
	}, nil
}

// FetchTokenBalances implements port.PortfolioFetcher.
func (c *AlchemyClient) FetchTokenBalances(ctx context.Context, address string) ([]entity.Token, error) {
	body, err := json.Marshal(dto.TokensByAddressRequest{
		Addresses:           []dto.AddressNetworks{{Address: address, Networks: c.cfg.Networks}},
		WithMetadata:        true,
		WithPrices:          false,
		IncludeNativeTokens: true,
		IncludeErc20Tokens:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token balances request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/%s/assets/tokens/by-address", c.cfg.DataBaseURL, c.cfg.APIKey)
	rawBody, err := c.execute(ctx, endpointTokens, fasthttp.MethodPost, requestURL, body)
	if err != nil {
		return nil, err
	}

	var decoded dto.TokensByAddressResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		c.logger.Error("Failed to unmarshal token balances response", zap.Int("bodySize", len(rawBody)), zap.Error(err))
		return nil, fmt.Errorf("token balances: %w: %v", entity.ErrDecodingFailed, err)
	}

	tokens := make([]entity.Token, 0, min(len(decoded.Data.Tokens), c.cfg.MaxTokens))
	for _, row := range decoded.Data.Tokens {
		if utils.IsZeroBalance(row.TokenBalance) {
			continue
		}
		tokens = append(tokens, c.toToken(row))
		if len(tokens) == c.cfg.MaxTokens {
			break
		}
	}

	c.logger.Debug("Fetched token balances",
		zap.String("address", address),
		zap.Int("received", len(decoded.Data.Tokens)),
		zap.Int("kept", len(tokens)))
	return tokens, nil
}

// FetchNFTCollections implements port.PortfolioFetcher.
func (c *AlchemyClient) FetchNFTCollections(ctx context.Context, address string) ([]entity.NFTCollection, error) {
	query := url.Values{}
	query.Set("owner", address)
	query.Set("pageSize", strconv.Itoa(c.cfg.NFTPageSize))
	requestURL := fmt.Sprintf("%s/%s/getContractsForOwner?%s", c.cfg.NFTBaseURL, c.cfg.APIKey, query.Encode())

	rawBody, err := c.execute(ctx, endpointNFTs, fasthttp.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	var decoded dto.ContractsForOwnerResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		c.logger.Error("Failed to unmarshal NFT contracts response", zap.Int("bodySize", len(rawBody)), zap.Error(err))
		return nil, fmt.Errorf("nft contracts: %w: %v", entity.ErrDecodingFailed, err)
	}

	collections := make([]entity.NFTCollection, 0, len(decoded.Contracts))
	for _, contract := range decoded.Contracts {
		if contract.IsSpam != nil && *contract.IsSpam {
			continue
		}
		collections = append(collections, toCollection(contract))
	}

	c.logger.Debug("Fetched NFT collections",
		zap.String("address", address),
		zap.Int("received", len(decoded.Contracts)),
		zap.Int("kept", len(collections)))
	return collections, nil
}

// execute runs one logical call under the retry policy. Each attempt waits on the rate limiter.
func (c *AlchemyClient) execute(ctx context.Context, endpoint, method, requestURL string, body []byte) ([]byte, error) {
	attempt := 0
	rawBody, err := retry.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.RetryAttempts.WithLabelValues(endpoint).Inc()
		}
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%s: rate limiter: %w", endpoint, errors.Join(entity.ErrRequestFailed, err))
		}
		return c.doOnce(ctx, endpoint, method, requestURL, body)
	})

	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	case ctx.Err() != nil:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "cancelled").Inc()
		return nil, ctx.Err()
	case errors.Is(err, entity.ErrInvalidCredentials):
		metrics.UpstreamRequests.WithLabelValues(endpoint, "unauthorized").Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(endpoint, "failure").Inc()
		c.logger.Warn("Alchemy request gave up",
			zap.String("endpoint", endpoint),
			zap.Int("attempts", attempt),
			zap.Int("maxAttempts", c.retry.MaxAttempts()),
			zap.Error(err))
	}
	return rawBody, err
}

// attemptResult is what one fasthttp round trip leaves behind once req/resp are released.
type attemptResult struct {
	status int
	body   []byte
	err    error
}

// doOnce performs a single attempt. fasthttp does not observe ctx, so the round trip runs
// in its own goroutine and a cancelled ctx returns at once. The abandoned round trip still
// ends within the request timeout and releases its buffers itself.
func (c *AlchemyClient) doOnce(ctx context.Context, endpoint, method, requestURL string, body []byte) ([]byte, error) {
	done := make(chan attemptResult, 1)
	go func() {
		done <- c.roundTrip(ctx, endpoint, method, requestURL, body)
	}()

	var res attemptResult
	select {
	case res = <-done:
	case <-ctx.Done():
		c.logger.Debug("Alchemy request abandoned", zap.String("endpoint", endpoint))
		return nil, ctx.Err()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res.err != nil {
		c.logger.Warn("Alchemy request failed", zap.String("endpoint", endpoint), zap.Error(res.err))
		return nil, fmt.Errorf("%s: %w: %v", endpoint, entity.ErrRequestFailed, res.err)
	}

	status := res.status
	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		c.logger.Error("Alchemy rejected the API key", zap.String("endpoint", endpoint), zap.Int("statusCode", status))
		return nil, fmt.Errorf("%s: status %d: %w", endpoint, status, entity.ErrInvalidCredentials)
	case status < 200 || status > 299:
		c.logger.Warn("Alchemy request returned non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", truncate(res.body, 512)))
		return nil, fmt.Errorf("%s: status %d: %w", endpoint, status, entity.ErrRequestFailed)
	}
	return res.body, nil
}

func (c *AlchemyClient) roundTrip(ctx context.Context, endpoint, method, requestURL string, body []byte) attemptResult {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	started := time.Now()
	deadline := started.Add(c.cfg.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	err := c.client.DoDeadline(req, resp, deadline)
	metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	if err != nil {
		return attemptResult{err: err}
	}
	// resp is released on return
	return attemptResult{status: resp.StatusCode(), body: append([]byte(nil), resp.Body()...)}
}

func (c *AlchemyClient) toToken(row dto.TokenEntry) entity.Token {
	native := row.TokenAddress == nil || strings.TrimSpace(*row.TokenAddress) == ""
	tokenAddress := entity.NativeTokenAddress
	if !native {
		tokenAddress = *row.TokenAddress
	}

	name, symbol, decimals := unknownTokenName, unknownSymbol, defaultDecimals
	if native {
		fallback := c.networkProvider.NativeFallback(row.Network)
		name, symbol, decimals = fallback.NativeName, fallback.NativeSymbol, fallback.NativeDecimals
	}

	token := entity.Token{
		ID:           entity.TokenID(row.Network, tokenAddress),
		Network:      row.Network,
		TokenAddress: tokenAddress,
		Name:         name,
		Symbol:       symbol,
		Decimals:     decimals,
		RawBalance:   row.TokenBalance,
	}
	if md := row.TokenMetadata; md != nil {
		token.Name = firstNonEmpty(md.Name, token.Name)
		token.Symbol = firstNonEmpty(md.Symbol, token.Symbol)
		if md.Decimals != nil && *md.Decimals >= 0 {
			token.Decimals = *md.Decimals
		}
		token.LogoURL = firstNonEmpty(md.Logo, "")
	}
	return token
}

func toCollection(contract dto.ContractEntry) entity.NFTCollection {
	collection := entity.NFTCollection{
		ID:              "eth-" + contract.Address,
		Network:         NFTNetwork,
		ContractAddress: contract.Address,
		Name:            firstNonEmpty(contract.Name, unknownCollectionName),
		Symbol:          firstNonEmpty(contract.Symbol, unknownSymbol),
		TokenType:       firstNonEmpty(contract.TokenType, defaultTokenType),
	}
	if contract.NumDistinctTokensOwned != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(*contract.NumDistinctTokensOwned)); err == nil {
			collection.OwnedCount = n
		}
	}
	if meta := contract.OpenSeaMetadata; meta != nil {
		collection.Name = firstNonEmpty(meta.CollectionName, collection.Name)
		collection.FloorPrice = meta.FloorPrice
		collection.ImageURL = firstNonEmpty(meta.ImageURL, "")
	}
	return collection
}

func firstNonEmpty(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
