package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"wallet_portfolio/internal/domain/entity"
	dto "wallet_portfolio/internal/entity"
	networkdefinition "wallet_portfolio/internal/infrastructure/network/definition"
	"wallet_portfolio/internal/pkg/logger"
	"wallet_portfolio/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-key"

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*AlchemyClientConfig)) *AlchemyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := AlchemyClientConfig{
		APIKey:      testAPIKey,
		DataBaseURL: srv.URL + "/data/v1",
		NFTBaseURL:  srv.URL + "/nft/v3",
		Timeout:     2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	np := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop(), nil)
	c, err := NewAlchemyClient(cfg, np, retry.New(retry.WithSleeper(noSleep)), zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewAlchemyClientRequiresAPIKey(t *testing.T) {
	np := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop(), nil)
	_, err := NewAlchemyClient(AlchemyClientConfig{APIKey: "  "}, np, nil, zap.NewNop())
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestFetchTokenBalances(t *testing.T) {
	var body dto.TokensByAddressRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/data/v1/"+testAPIKey+"/assets/tokens/by-address", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		_, _ = io.WriteString(w, `{"data":{"tokens":[
			{"network":"eth-mainnet","address":"0xW","tokenAddress":null,"tokenBalance":"0x14D1120D7B160000","tokenMetadata":{"name":null,"symbol":"","decimals":null,"logo":null}},
			{"network":"eth-mainnet","address":"0xW","tokenAddress":"0xdead","tokenBalance":"0x0000","tokenMetadata":{"name":"Zero","symbol":"ZRO","decimals":18}},
			{"network":"eth-mainnet","address":"0xW","tokenAddress":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48","tokenBalance":"0x9502F900","tokenMetadata":{"name":"USD Coin","symbol":"USDC","decimals":6,"logo":"https://logo/usdc.png"}},
			{"network":"eth-mainnet","address":"0xW","tokenAddress":"0xbeef","tokenBalance":"12","tokenMetadata":{"name":"","symbol":null}},
			{"network":"polygon-mainnet","address":"0xW","tokenBalance":"0x1"}
		],"pageKey":null}}`)
	})

	tokens, err := c.FetchTokenBalances(context.Background(), "0xW")
	require.NoError(t, err)

	require.Len(t, body.Addresses, 1)
	assert.Equal(t, "0xW", body.Addresses[0].Address)
	assert.Equal(t, []string{"eth-mainnet"}, body.Addresses[0].Networks)
	assert.True(t, body.WithMetadata)
	assert.False(t, body.WithPrices)
	assert.True(t, body.IncludeNativeTokens)
	assert.True(t, body.IncludeErc20Tokens)

	require.Len(t, tokens, 4)

	eth := tokens[0]
	assert.Equal(t, "eth-mainnet-native", eth.ID)
	assert.True(t, eth.IsNative())
	assert.Equal(t, "Ethereum", eth.Name)
	assert.Equal(t, "ETH", eth.Symbol)
	assert.Equal(t, 18, eth.Decimals)
	assert.Equal(t, "1.5000", eth.FormattedBalance())

	usdc := tokens[1]
	assert.Equal(t, "eth-mainnet-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", usdc.ID)
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, "2500.00", usdc.FormattedBalance())
	assert.Equal(t, "https://logo/usdc.png", usdc.LogoURL)

	unknown := tokens[2]
	assert.Equal(t, "Unknown Token", unknown.Name)
	assert.Equal(t, "???", unknown.Symbol)
	assert.Equal(t, 18, unknown.Decimals)

	pol := tokens[3]
	assert.Equal(t, "polygon-mainnet-native", pol.ID)
	assert.Equal(t, "Polygon", pol.Name)
	assert.Equal(t, "POL", pol.Symbol)
}

func TestFetchTokenBalancesCapsInResponseOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rows []string
		for i := 0; i < 25; i++ {
			rows = append(rows, fmt.Sprintf(`{"network":"eth-mainnet","tokenAddress":"0x%040x","tokenBalance":"0x1"}`, i))
		}
		_, _ = io.WriteString(w, `{"data":{"tokens":[`+strings.Join(rows, ",")+`]}}`)
	})

	tokens, err := c.FetchTokenBalances(context.Background(), "0xW")
	require.NoError(t, err)
	require.Len(t, tokens, 20)
	assert.Equal(t, fmt.Sprintf("0x%040x", 0), tokens[0].TokenAddress)
	assert.Equal(t, fmt.Sprintf("0x%040x", 19), tokens[19].TokenAddress)
}

func TestFetchStatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		wantCalls int32
	}{
		{name: "forbidden is not retried", status: http.StatusForbidden, wantErr: entity.ErrInvalidCredentials, wantCalls: 1},
		{name: "unauthorized is not retried", status: http.StatusUnauthorized, wantErr: entity.ErrInvalidCredentials, wantCalls: 1},
		{name: "server error is retried", status: http.StatusInternalServerError, wantErr: entity.ErrRequestFailed, wantCalls: 3},
		{name: "too many requests is retried", status: http.StatusTooManyRequests, wantErr: entity.ErrRequestFailed, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			})

			_, err := c.FetchNFTCollections(context.Background(), "0xW")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"tokens":[]}}`)
	})

	tokens, err := c.FetchTokenBalances(context.Background(), "0xW")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDecodingFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"data":`)
	})

	_, err := c.FetchTokenBalances(context.Background(), "0xW")
	assert.ErrorIs(t, err, entity.ErrDecodingFailed)
	assert.Equal(t, "Failed to parse server response.", entity.UserMessage(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchCancelled(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchTokenBalances(ctx, "0xW")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFetchCancelledMidRequestReturnsPromptly(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = io.WriteString(w, `{"data":{"tokens":[]}}`)
	}, func(cfg *AlchemyClientConfig) { cfg.Timeout = 10 * time.Second })
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	begin := time.Now()
	_, err := c.FetchTokenBalances(ctx, "0xW")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(begin), 2*time.Second)
}

func TestFetchNFTCollections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/nft/v3/"+testAPIKey+"/getContractsForOwner", r.URL.Path)
		assert.Equal(t, "0xW", r.URL.Query().Get("owner"))
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))

		_, _ = io.WriteString(w, `{"contracts":[
			{"address":"0xBC4C","name":"BoredApeYachtClub","symbol":"BAYC","tokenType":"ERC721","numDistinctTokensOwned":"2","isSpam":false,
			 "openSeaMetadata":{"floorPrice":12.5,"collectionName":"Bored Ape Yacht Club","imageUrl":"https://img/bayc.png"}},
			{"address":"0xSPAM","name":"Free Mint","isSpam":true},
			{"address":"0xNONAME","numDistinctTokensOwned":"many"},
			{"address":"0xPLAIN","name":"Plain","symbol":"PLN","tokenType":"ERC1155","numDistinctTokensOwned":"7","openSeaMetadata":{"collectionName":""}}
		],"pageKey":null}`)
	})

	collections, err := c.FetchNFTCollections(context.Background(), "0xW")
	require.NoError(t, err)
	require.Len(t, collections, 3)

	bayc := collections[0]
	assert.Equal(t, "eth-0xBC4C", bayc.ID)
	assert.Equal(t, "eth-mainnet", bayc.Network)
	assert.Equal(t, "Bored Ape Yacht Club", bayc.Name)
	assert.Equal(t, 2, bayc.OwnedCount)
	floor, ok := bayc.FormattedFloorPrice()
	assert.True(t, ok)
	assert.Equal(t, "12.50 ETH", floor)
	assert.Equal(t, "https://img/bayc.png", bayc.ImageURL)

	noName := collections[1]
	assert.Equal(t, "Unknown Collection", noName.Name)
	assert.Equal(t, "???", noName.Symbol)
	assert.Equal(t, "ERC721", noName.TokenType)
	assert.Equal(t, 0, noName.OwnedCount)
	_, ok = noName.FormattedFloorPrice()
	assert.False(t, ok)

	plain := collections[2]
	assert.Equal(t, "Plain", plain.Name)
	assert.Equal(t, "ERC1155", plain.TokenType)
	assert.Equal(t, 7, plain.OwnedCount)
}
