package service

import (
	"context"
	"strings"
	"sync"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// PortfolioService implements port.PortfolioCoordinator.
// One wallet is loaded at a time: a new Load cancels and joins the previous one.
type PortfolioService struct {
	fetcher  port.PortfolioFetcher
	prices   port.PriceStreamer
	listener port.PortfolioListener
	logger   port.Logger

	// loadMu serializes loads, streamMu serializes price stream start/stop.
	loadMu   sync.Mutex
	streamMu sync.Mutex

	mu         sync.Mutex
	state      entity.PortfolioState
	snapshot   entity.PriceSnapshot
	cancelLoad context.CancelFunc
	loadSeq    uint64
	relayDone  chan struct{}
}

var _ port.PortfolioCoordinator = (*PortfolioService)(nil)

type nopListener struct{}

func (nopListener) OnPortfolioState(entity.PortfolioState) {}
func (nopListener) OnPriceSnapshot(entity.PriceSnapshot)   {}

// NewPortfolioService creates a new instance of PortfolioService. listener may be nil.
func NewPortfolioService(
	fetcher port.PortfolioFetcher,
	prices port.PriceStreamer,
	listener port.PortfolioListener,
	l port.Logger,
) *PortfolioService {
	if listener == nil {
		listener = nopListener{}
	}
	return &PortfolioService{
		fetcher:  fetcher,
		prices:   prices,
		listener: listener,
		logger:   l,
		state:    entity.PortfolioState{Status: entity.StatusIdle},
		snapshot: entity.PriceSnapshot{},
	}
}

// Load fetches the wallet's tokens and NFT collections concurrently and publishes the outcome.
// Failures are reported through the returned state; the error is non-nil only when the load
// was cancelled, in which case nothing after the loading state is published.
func (s *PortfolioService) Load(ctx context.Context, address string) (entity.PortfolioState, error) {
	address = strings.TrimSpace(address)
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.cancelLoad = cancel
	s.mu.Unlock()
	defer s.releaseLoad(seq)

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if err := loadCtx.Err(); err != nil {
		s.logger.Debug("Portfolio load superseded before start", "address", address)
		return entity.PortfolioState{}, err
	}

	s.streamMu.Lock()
	s.stopPricesLocked()
	s.streamMu.Unlock()

	s.mu.Lock()
	s.snapshot = entity.PriceSnapshot{}
	s.mu.Unlock()

	log := s.logger.With("address", address)
	log.Info("Loading portfolio")
	s.publish(entity.PortfolioState{Status: entity.StatusLoading, Address: address})

	// every Load reads fresh holdings
	if inv, ok := s.fetcher.(port.FetchInvalidator); ok {
		inv.Invalidate(address)
	}

	data, err := s.fetch(loadCtx, address)

	s.streamMu.Lock()
	defer s.streamMu.Unlock()
	if ctxErr := loadCtx.Err(); ctxErr != nil {
		log.Info("Portfolio load cancelled")
		metrics.PortfolioLoads.WithLabelValues("cancelled").Inc()
		return entity.PortfolioState{}, ctxErr
	}

	var state entity.PortfolioState
	switch {
	case err != nil:
		log.Error("Portfolio load failed", "error", err)
		state = entity.PortfolioState{Status: entity.StatusError, Address: address, Message: entity.UserMessage(err)}
	case data.IsEmpty():
		log.Info("Wallet holds no tokens or NFTs")
		state = entity.PortfolioState{Status: entity.StatusEmpty, Address: address}
	default:
		log.Info("Portfolio loaded", "tokens", len(data.Tokens), "nftCollections", len(data.NFTCollections))
		state = entity.PortfolioState{Status: entity.StatusLoaded, Address: address, Data: &data}
	}
	metrics.PortfolioLoads.WithLabelValues(string(state.Status)).Inc()
	s.publish(state)

	if state.Status == entity.StatusLoaded && len(data.Tokens) > 0 {
		s.startPricesLocked(data.Tokens)
	}
	return state, nil
}

// Stop cancels an in-flight load and ends the price stream. The last published state is kept.
func (s *PortfolioService) Stop() {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.mu.Unlock()

	s.streamMu.Lock()
	s.stopPricesLocked()
	s.streamMu.Unlock()
	s.logger.Debug("Portfolio service stopped")
}

// State returns the last published portfolio state.
func (s *PortfolioService) State() entity.PortfolioState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the latest price snapshot.
func (s *PortfolioService) Snapshot() entity.PriceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

func (s *PortfolioService) fetch(ctx context.Context, address string) (entity.PortfolioData, error) {
	data := entity.PortfolioData{
		Tokens:         []entity.Token{},
		NFTCollections: []entity.NFTCollection{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tokens, err := s.fetcher.FetchTokenBalances(gctx, address)
		if err != nil {
			return err
		}
		if tokens != nil {
			data.Tokens = tokens
		}
		return nil
	})
	g.Go(func() error {
		collections, err := s.fetcher.FetchNFTCollections(gctx, address)
		if err != nil {
			return err
		}
		if collections != nil {
			data.NFTCollections = collections
		}
		return nil
	})

	err := g.Wait()
	return data, err
}

func (s *PortfolioService) publish(state entity.PortfolioState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.listener.OnPortfolioState(state)
}

// startPricesLocked requires streamMu.
func (s *PortfolioService) startPricesLocked(tokens []entity.Token) {
	updates := s.prices.Start(tokens)
	done := make(chan struct{})

	s.mu.Lock()
	s.relayDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for snapshot := range updates {
			s.mu.Lock()
			s.snapshot = snapshot
			s.mu.Unlock()
			s.listener.OnPriceSnapshot(snapshot)
		}
		s.logger.Debug("Price relay finished")
	}()
}

// stopPricesLocked requires streamMu.
func (s *PortfolioService) stopPricesLocked() {
	s.prices.Disconnect()

	s.mu.Lock()
	done := s.relayDone
	s.relayDone = nil
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *PortfolioService) releaseLoad(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadSeq == seq {
		s.cancelLoad = nil
	}
}
