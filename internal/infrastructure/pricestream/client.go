package pricestream

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
	dto "wallet_portfolio/internal/entity"
	"wallet_portfolio/internal/pkg/metrics"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultURL is the public price feed endpoint.
	DefaultURL = "wss://websocket-floor-test-732ef4f89e9d.herokuapp.com"

	defaultCooldown         = 3 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	closeWriteTimeout       = time.Second
	usdCurrency             = "USD"
)

// Client streams live USD prices for held tokens over a WebSocket subscription.
// At most one session runs at a time; Start replaces the running one.
// A failed session ends its channel after a cooldown and is not reconnected.
type Client struct {
	url      string
	dialer   *websocket.Dialer
	cooldown time.Duration
	networks port.NetworkDefinitionProvider
	logger   port.Logger

	state atomic.Int32

	// lifecycle serializes Start and Disconnect
	lifecycle sync.Mutex

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

var _ port.PriceStreamer = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithCooldown sets the pause between a socket failure and the end of the session.
func WithCooldown(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.cooldown = d
		}
	}
}

// WithHandshakeTimeout bounds the WebSocket opening handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.dialer.HandshakeTimeout = d
		}
	}
}

// New creates a Client for the feed at url.
func New(url string, networks port.NetworkDefinitionProvider, logger port.Logger, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		cooldown: defaultCooldown,
		networks: networks,
		logger:   logger.With("component", "PriceStream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state of the current or last session.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// Start implements port.PriceStreamer.
func (c *Client) Start(tokens []entity.Token) <-chan entity.PriceSnapshot {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.disconnect()

	lookup := BuildLookup(tokens, c.networks)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan entity.PriceSnapshot)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.setState(StateConnecting)
	c.logger.Info("Starting price stream", "url", c.url, "tokens", len(tokens), "identifiers", len(lookup))

	go c.run(ctx, tokens, lookup, out, done)
	return out
}

// Disconnect implements port.PriceStreamer. Safe to call repeatedly and before any Start.
func (c *Client) Disconnect() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.disconnect()
}

// disconnect requires lifecycle.
func (c *Client) disconnect() {
	c.mu.Lock()
	cancel, conn, done := c.cancel, c.conn, c.done
	c.cancel, c.conn, c.done = nil, nil, nil
	if cancel != nil {
		// under mu so a concurrent attach observes the cancellation
		cancel()
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout))
		_ = conn.Close()
	}
	<-done
	c.logger.Debug("Price stream disconnected")
}

// BuildLookup maps the canonical identifier of every token to its id.
func BuildLookup(tokens []entity.Token, networks port.NetworkDefinitionProvider) map[entity.AssetIdentifier]string {
	lookup := make(map[entity.AssetIdentifier]string, len(tokens))
	for _, token := range tokens {
		lookup[identifierFor(token, networks)] = token.ID
	}
	return lookup
}

func identifierFor(token entity.Token, networks port.NetworkDefinitionProvider) entity.AssetIdentifier {
	return entity.NewAssetIdentifier(networks.ChainID(token.Network), token.TokenAddress)
}

func (c *Client) run(ctx context.Context, tokens []entity.Token, lookup map[entity.AssetIdentifier]string, out chan<- entity.PriceSnapshot, done chan<- struct{}) {
	metrics.ActivePriceSessions.Inc()
	defer func() {
		final := c.State()
		metrics.PriceSessions.WithLabelValues(final.String()).Inc()
		metrics.ActivePriceSessions.Dec()
		close(out)
		close(done)
	}()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.fail(ctx, "dial", err)
		return
	}
	if !c.attach(ctx, conn) {
		_ = conn.Close()
		c.setState(StateClosed)
		return
	}
	defer c.detach(conn)

	for _, token := range tokens {
		frame, err := json.Marshal(dto.NewSubscribeMessage(identifierFor(token, c.networks)))
		if err != nil {
			c.logger.Warn("Failed to encode subscribe frame", "tokenId", token.ID, "error", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.fail(ctx, "subscribe", err)
			return
		}
	}
	c.setState(StateSubscribed)
	c.logger.Debug("Subscriptions sent", "count", len(tokens))

	c.receive(ctx, conn, lookup, out)
}

// receive owns the session's price map. Every accepted update publishes a copy.
func (c *Client) receive(ctx context.Context, conn *websocket.Conn, lookup map[entity.AssetIdentifier]string, out chan<- entity.PriceSnapshot) {
	prices := make(entity.PriceSnapshot, len(lookup))
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				c.setState(StateClosed)
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logger.Info("Price stream closed by server")
				c.setState(StateClosed)
			default:
				c.fail(ctx, "receive", err)
			}
			return
		}

		// text and binary frames carry the same JSON payload
		update, ok := decodeUpdate(data)
		if !ok {
			metrics.PriceUpdates.WithLabelValues("undecodable").Inc()
			c.logger.Warn("Discarding undecodable price frame", "type", messageType, "size", len(data))
			continue
		}

		id := entity.NewAssetIdentifier(update.AssetIdentifier.ChainID, update.AssetIdentifier.Address)
		tokenID, ok := lookup[id]
		if !ok {
			metrics.PriceUpdates.WithLabelValues("unmapped").Inc()
			c.logger.Debug("Discarding price for unknown asset", "chainId", id.ChainID, "address", id.Address)
			continue
		}

		usd, err := strconv.ParseFloat(strings.TrimSpace(update.Price.UsdValue), 64)
		if err != nil {
			usd = 0
		}
		prices[tokenID] = entity.TokenPrice{Raw: usd, Currency: usdCurrency}
		metrics.PriceUpdates.WithLabelValues("applied").Inc()
		c.setState(StateStreaming)

		select {
		case out <- prices.Clone():
		case <-ctx.Done():
			c.setState(StateClosed)
			return
		}
	}
}

// decodeUpdate rejects frames that are not JSON or lack an asset identifier or price value.
func decodeUpdate(data []byte) (dto.PriceUpdateMessage, bool) {
	var update dto.PriceUpdateMessage
	if err := json.Unmarshal(data, &update); err != nil {
		return update, false
	}
	if update.AssetIdentifier.Address == "" || update.Price.UsdValue == "" {
		return update, false
	}
	return update, true
}

// fail marks the session errored and holds it open for the cooldown unless it was cancelled.
func (c *Client) fail(ctx context.Context, stage string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		c.setState(StateClosed)
		return
	}
	c.setState(StateErrored)
	c.logger.Error("Price stream failed", "stage", stage, "error", err, "cooldown", c.cooldown)

	if c.cooldown <= 0 {
		return
	}
	timer := time.NewTimer(c.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Client) attach(ctx context.Context, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	c.conn = conn
	return true
}

func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}
