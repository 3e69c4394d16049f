package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	tokens      func(ctx context.Context, address string) ([]entity.Token, error)
	collections func(ctx context.Context, address string) ([]entity.NFTCollection, error)
}

func (f *fakeFetcher) FetchTokenBalances(ctx context.Context, address string) ([]entity.Token, error) {
	if f.tokens == nil {
		return nil, nil
	}
	return f.tokens(ctx, address)
}

func (f *fakeFetcher) FetchNFTCollections(ctx context.Context, address string) ([]entity.NFTCollection, error) {
	if f.collections == nil {
		return nil, nil
	}
	return f.collections(ctx, address)
}

// invalidatingFetcher records the addresses a cache in front of the fetcher was told to drop.
type invalidatingFetcher struct {
	*fakeFetcher
	mu          sync.Mutex
	invalidated []string
}

func (f *invalidatingFetcher) Invalidate(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, address)
}

type fakeStreamer struct {
	mu          sync.Mutex
	ch          chan entity.PriceSnapshot
	started     [][]entity.Token
	disconnects int
}

func (f *fakeStreamer) Start(tokens []entity.Token) <-chan entity.PriceSnapshot {
	f.Disconnect()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan entity.PriceSnapshot)
	f.started = append(f.started, tokens)
	return f.ch
}

func (f *fakeStreamer) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	if f.ch != nil {
		close(f.ch)
		f.ch = nil
	}
}

func (f *fakeStreamer) push(snapshot entity.PriceSnapshot) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- snapshot
}

func (f *fakeStreamer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

type recordingListener struct {
	mu        sync.Mutex
	states    []entity.PortfolioState
	snapshots []entity.PriceSnapshot
}

func (r *recordingListener) OnPortfolioState(state entity.PortfolioState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingListener) OnPriceSnapshot(snapshot entity.PriceSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
}

func (r *recordingListener) statuses() []entity.LoadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.LoadStatus, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s.Status)
	}
	return out
}

func (r *recordingListener) snapshotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

var ethToken = entity.Token{
	ID:           "eth-mainnet-native",
	Network:      "eth-mainnet",
	TokenAddress: entity.NativeTokenAddress,
	Name:         "Ethereum",
	Symbol:       "ETH",
	Decimals:     18,
	RawBalance:   "0x14D1120D7B160000",
}

func newService(f *fakeFetcher) (*PortfolioService, *fakeStreamer, *recordingListener) {
	streamer := &fakeStreamer{}
	listener := &recordingListener{}
	return NewPortfolioService(f, streamer, listener, logger.NewNop()), streamer, listener
}

func TestLoadPublishesLoadedAndStartsPrices(t *testing.T) {
	svc, streamer, listener := newService(&fakeFetcher{
		tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
			return []entity.Token{ethToken}, nil
		},
	})
	t.Cleanup(svc.Stop)

	state, err := svc.Load(context.Background(), " 0xW ")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusLoaded, state.Status)
	assert.Equal(t, "0xW", state.Address)
	require.NotNil(t, state.Data)
	require.Len(t, state.Data.Tokens, 1)
	assert.Equal(t, "1.5000", state.Data.Tokens[0].FormattedBalance())
	assert.NotNil(t, state.Data.NFTCollections)
	assert.Equal(t, []entity.LoadStatus{entity.StatusLoading, entity.StatusLoaded}, listener.statuses())
	assert.Equal(t, state, svc.State())

	require.Equal(t, 1, streamer.startCount())
	assert.Equal(t, []entity.Token{ethToken}, streamer.started[0])

	streamer.push(entity.PriceSnapshot{ethToken.ID: {Raw: 3000, Currency: "USD"}})
	assert.Eventually(t, func() bool { return listener.snapshotCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3000.0, svc.Snapshot()[ethToken.ID].Raw)
}

func TestLoadClassifiesOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		fetcher     *fakeFetcher
		wantStatus  entity.LoadStatus
		wantMessage string
		wantStream  bool
	}{
		{
			name:       "empty wallet",
			fetcher:    &fakeFetcher{},
			wantStatus: entity.StatusEmpty,
		},
		{
			name: "only nfts",
			fetcher: &fakeFetcher{
				collections: func(ctx context.Context, address string) ([]entity.NFTCollection, error) {
					return []entity.NFTCollection{{ID: "eth-0x1"}}, nil
				},
			},
			wantStatus: entity.StatusLoaded,
		},
		{
			name: "invalid api key",
			fetcher: &fakeFetcher{
				tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
					return nil, fmt.Errorf("status 403: %w", entity.ErrInvalidCredentials)
				},
			},
			wantStatus:  entity.StatusError,
			wantMessage: "API key is missing or invalid. Set ALCHEMY_API_KEY environment variable.",
		},
		{
			name: "token failure discards nft success",
			fetcher: &fakeFetcher{
				tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
					return nil, entity.ErrRequestFailed
				},
				collections: func(ctx context.Context, address string) ([]entity.NFTCollection, error) {
					return []entity.NFTCollection{{ID: "eth-0x1"}}, nil
				},
			},
			wantStatus:  entity.StatusError,
			wantMessage: "Network request failed. Please try again.",
		},
		{
			name: "decoding failure",
			fetcher: &fakeFetcher{
				collections: func(ctx context.Context, address string) ([]entity.NFTCollection, error) {
					return nil, entity.ErrDecodingFailed
				},
			},
			wantStatus:  entity.StatusError,
			wantMessage: "Failed to parse server response.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, streamer, listener := newService(tt.fetcher)
			t.Cleanup(svc.Stop)

			state, err := svc.Load(context.Background(), "0xW")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, state.Status)
			assert.Equal(t, tt.wantMessage, state.Message)
			assert.Equal(t, []entity.LoadStatus{entity.StatusLoading, tt.wantStatus}, listener.statuses())
			assert.Equal(t, 0, streamer.startCount())
		})
	}
}

func TestLoadCancelledPublishesNothingFurther(t *testing.T) {
	started := make(chan struct{})
	svc, streamer, listener := newService(&fakeFetcher{
		tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := svc.Load(ctx, "0xW")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []entity.LoadStatus{entity.StatusLoading}, listener.statuses())
	assert.Equal(t, entity.StatusLoading, svc.State().Status)
	assert.Equal(t, 0, streamer.startCount())
}

func TestNewLoadCancelsInFlightLoad(t *testing.T) {
	firstStarted := make(chan struct{})
	svc, _, listener := newService(&fakeFetcher{
		tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
			if address == "0xA" {
				close(firstStarted)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return []entity.Token{ethToken}, nil
		},
	})
	t.Cleanup(svc.Stop)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Load(context.Background(), "0xA")
		firstErr <- err
	}()
	<-firstStarted

	state, err := svc.Load(context.Background(), "0xB")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLoaded, state.Status)
	assert.Equal(t, "0xB", state.Address)
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	assert.Equal(t, []entity.LoadStatus{entity.StatusLoading, entity.StatusLoading, entity.StatusLoaded}, listener.statuses())
	assert.Equal(t, "0xB", svc.State().Address)
}

func TestReloadStopsPreviousStream(t *testing.T) {
	svc, streamer, _ := newService(&fakeFetcher{
		tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
			return []entity.Token{ethToken}, nil
		},
	})
	t.Cleanup(svc.Stop)

	_, err := svc.Load(context.Background(), "0xW")
	require.NoError(t, err)
	streamer.push(entity.PriceSnapshot{ethToken.ID: {Raw: 1}})
	assert.Eventually(t, func() bool { return len(svc.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	_, err = svc.Load(context.Background(), "0xW")
	require.NoError(t, err)
	assert.Equal(t, 2, streamer.startCount())
	assert.Empty(t, svc.Snapshot())
}

func TestStopKeepsState(t *testing.T) {
	svc, streamer, _ := newService(&fakeFetcher{
		tokens: func(ctx context.Context, address string) ([]entity.Token, error) {
			return []entity.Token{ethToken}, nil
		},
	})

	state, err := svc.Load(context.Background(), "0xW")
	require.NoError(t, err)

	svc.Stop()
	svc.Stop()

	assert.Equal(t, state, svc.State())
	streamer.mu.Lock()
	assert.Nil(t, streamer.ch)
	streamer.mu.Unlock()
}

func TestEveryLoadInvalidatesCachedHoldings(t *testing.T) {
	fetcher := &invalidatingFetcher{fakeFetcher: &fakeFetcher{
		collections: func(ctx context.Context, address string) ([]entity.NFTCollection, error) {
			return []entity.NFTCollection{{ID: "eth-0xabc"}}, nil
		},
	}}
	svc := NewPortfolioService(fetcher, &fakeStreamer{}, nil, logger.NewNop())
	t.Cleanup(svc.Stop)

	for i := 0; i < 2; i++ {
		state, err := svc.Load(context.Background(), "0xW")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusLoaded, state.Status)
	}

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.Equal(t, []string{"0xW", "0xW"}, fetcher.invalidated)
}
