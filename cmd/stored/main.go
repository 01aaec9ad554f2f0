package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lukasa-pay/lukasa/internal/bank"
	"github.com/lukasa-pay/lukasa/internal/config"
	"github.com/lukasa-pay/lukasa/internal/infra"
	"github.com/lukasa-pay/lukasa/internal/logging"
	"github.com/lukasa-pay/lukasa/internal/middleware"
	"github.com/lukasa-pay/lukasa/internal/server"
	"github.com/lukasa-pay/lukasa/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	gateway := bank.NewClient(cfg.BankURL)

	// Startup is fatal if the seller balance cannot be established: the
	// store never serves with undefined seller-balance state.
	svc, err := store.NewService(ctx, cfg.Price, cfg.SellerWallet, gateway, logger)
	if err != nil {
		logger.Error("initialize storefront", "error", err)
		os.Exit(1)
	}
	logger.Info("storefront ready", "price", cfg.Price, "seller", cfg.SellerWallet,
		"seller_balance", svc.SellerBalance())

	handler := store.NewHandler(svc)

	srv := server.New(cfg.Address(), server.Options{AppName: cfg.AppName, MaxWorkers: cfg.MaxWorkers})
	server.RegisterHealth(srv.App(), nil, cache)
	if cache != nil {
		srv.App().Use(middleware.Idempotency(cache, cfg.IdempotencyTTL, logger))
	}
	store.RegisterRoutes(srv.App(), handler)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-svc.Done():
		logger.Info("end execution requested")
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("store exited cleanly", "seller_balance", svc.SellerBalance())
}
