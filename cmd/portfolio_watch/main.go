package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet_portfolio/internal/app/bootstrap"
	"wallet_portfolio/internal/domain/entity"
	"wallet_portfolio/internal/infrastructure/configloader"
	"wallet_portfolio/internal/pkg/logger"
	"wallet_portfolio/internal/pkg/utils"
)

func main() {
	address := flag.String("address", "", "wallet address to watch")
	configPath := flag.String("config", utils.GetEnv("CONFIG_PATH", "config/config.yml"), "path to the YAML config")
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "usage: portfolio_watch -address 0x...")
		os.Exit(2)
	}

	cfg, err := configloader.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	defer logger.Sync()

	appLogger := logger.NewSlogAdapter()
	out := newPrinter(os.Stdout)
	svc, err := bootstrap.NewPortfolioService(cfg, bootstrap.NewNetworkProvider(cfg, appLogger), out, appLogger, zapLogger)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredentials) {
			fmt.Fprintln(os.Stderr, entity.UserMessage(err))
		} else {
			logger.Error("Failed to initialize portfolio service", "error", err)
		}
		os.Exit(1)
	}
	defer svc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Debug("Watching wallet", "address", *address, "config", *configPath)
	state, err := svc.Load(ctx, *address)
	if err != nil {
		logger.Warn("Load interrupted", "error", err)
		return
	}

	switch {
	case state.Status == entity.StatusError:
		svc.Stop()
		logger.Sync()
		os.Exit(1)
	case state.Status != entity.StatusLoaded || len(state.Data.Tokens) == 0:
		return
	}

	fmt.Fprintln(os.Stdout, "Streaming prices, press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("Stopping price stream")
}
