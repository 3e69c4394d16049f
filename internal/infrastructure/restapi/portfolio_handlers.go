package restapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// LoadRequest is the body of POST /portfolio/load.
type LoadRequest struct {
	Address string `json:"address"`
}

// ErrorResponse is returned for requests that produced no portfolio state.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PortfolioHandler handles portfolio and price HTTP requests.
type PortfolioHandler struct {
	coordinator port.PortfolioCoordinator
	networks    port.NetworkDefinitionProvider
	hub         *Hub
	logger      port.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
// A nil coordinator means the API key is not configured; every portfolio route then answers 503.
func NewPortfolioHandler(
	coordinator port.PortfolioCoordinator,
	networks port.NetworkDefinitionProvider,
	hub *Hub,
	logger port.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		coordinator: coordinator,
		networks:    networks,
		hub:         hub,
		logger:      logger,
	}
}

// requireCoordinator aborts with 503 when no coordinator is configured.
func (h *PortfolioHandler) requireCoordinator(c *gin.Context) {
	if h.coordinator == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: entity.UserMessage(entity.ErrInvalidCredentials)})
		return
	}
	c.Next()
}

// LoadPortfolioHandler loads a wallet and answers with the resulting state.
func (h *PortfolioHandler) LoadPortfolioHandler(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must be JSON with an address"})
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "address is required"})
		return
	}

	state, err := h.coordinator.Load(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
			h.logger.Debug("Client went away during load", "address", address)
		}
		c.JSON(http.StatusConflict, ErrorResponse{Error: "load was cancelled"})
		return
	}

	status := http.StatusOK
	if state.Status == entity.StatusError {
		status = http.StatusBadGateway
	}
	c.JSON(status, newPortfolioView(state))
}

// GetPortfolioHandler returns the last published portfolio state.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	c.JSON(http.StatusOK, newPortfolioView(h.coordinator.State()))
}

// GetPricesHandler returns the latest price snapshot.
func (h *PortfolioHandler) GetPricesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, newPricesView(h.coordinator.Snapshot()))
}

// StopPricesHandler stops the price stream.
func (h *PortfolioHandler) StopPricesHandler(c *gin.Context) {
	h.coordinator.Stop()
	c.Status(http.StatusNoContent)
}

// StreamHandler pushes state and price events as server-sent events until the client leaves.
func (h *PortfolioHandler) StreamHandler(c *gin.Context) {
	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("state", newPortfolioView(h.coordinator.State()))
	c.SSEvent("prices", newPricesView(h.coordinator.Snapshot()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// HealthHandler reports liveness, whether portfolios can be loaded and the networks prices are keyed by.
func (h *PortfolioHandler) HealthHandler(c *gin.Context) {
	defs := h.networks.GetAllNetworkDefinitions()
	networks := make([]NetworkView, 0, len(defs))
	for _, def := range defs {
		networks = append(networks, NetworkView{Identifier: def.Identifier, ChainID: def.ChainID, Name: def.Name})
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"configured": h.coordinator != nil,
		"networks":   networks,
	})
}
