package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_portfolio/internal/app/bootstrap"
	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/infrastructure/configloader"
	"wallet_portfolio/internal/infrastructure/restapi"
	"wallet_portfolio/internal/pkg/logger"
	"wallet_portfolio/internal/pkg/metrics"
	"wallet_portfolio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	defer logger.Sync()
	appLogger := logger.NewSlogAdapter()
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	hub := restapi.NewHub(appLogger)

	networks := bootstrap.NewNetworkProvider(cfg, appLogger)

	var coordinator port.PortfolioCoordinator
	portfolioService, err := bootstrap.NewPortfolioService(cfg, networks, hub, appLogger, zapLogger)
	switch {
	case errors.Is(err, entity.ErrInvalidCredentials):
		zapLogger.Warn("Portfolio API key missing, portfolio routes will answer 503",
			zap.String("hint", entity.UserMessage(err)))
	case err != nil:
		zapLogger.Fatal("Failed to initialize portfolio service", zap.Error(err))
	default:
		coordinator = portfolioService
		defer portfolioService.Stop()
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(restapi.NewPortfolioHandler(coordinator, networks, hub, appLogger), zapLogger)

	// cancelled on shutdown so open SSE streams end
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
