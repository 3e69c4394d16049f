package fetchcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	tokenCalls atomic.Int32
	nftCalls   atomic.Int32
	tokenErr   error
}

func (f *countingFetcher) FetchTokenBalances(ctx context.Context, address string) ([]entity.Token, error) {
	f.tokenCalls.Add(1)
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return []entity.Token{{ID: "eth-mainnet-native", Network: "eth-mainnet", TokenAddress: "native"}}, nil
}

func (f *countingFetcher) FetchNFTCollections(ctx context.Context, address string) ([]entity.NFTCollection, error) {
	f.nftCalls.Add(1)
	return []entity.NFTCollection{{ID: "eth-0xabc"}}, nil
}

func TestFetcherCachesSuccess(t *testing.T) {
	next := &countingFetcher{}
	f := Wrap(next, time.Minute, time.Minute, logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tokens, err := f.FetchTokenBalances(ctx, "0xAbC")
		require.NoError(t, err)
		assert.Len(t, tokens, 1)
	}
	_, err := f.FetchTokenBalances(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), next.tokenCalls.Load())

	_, err = f.FetchNFTCollections(ctx, "0xabc")
	require.NoError(t, err)
	_, err = f.FetchNFTCollections(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), next.nftCalls.Load())

	f.Invalidate("0xABC")
	_, err = f.FetchTokenBalances(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.tokenCalls.Load())
}

func TestFetcherDoesNotCacheErrors(t *testing.T) {
	next := &countingFetcher{tokenErr: entity.ErrRequestFailed}
	f := Wrap(next, time.Minute, time.Minute, logger.NewNop())

	_, err := f.FetchTokenBalances(context.Background(), "0xabc")
	assert.ErrorIs(t, err, entity.ErrRequestFailed)
	_, err = f.FetchTokenBalances(context.Background(), "0xabc")
	assert.ErrorIs(t, err, entity.ErrRequestFailed)
	assert.Equal(t, int32(2), next.tokenCalls.Load())
}
