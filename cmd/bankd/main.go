package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/lukasa-pay/lukasa/internal/bank"
	"github.com/lukasa-pay/lukasa/internal/config"
	"github.com/lukasa-pay/lukasa/internal/infra"
	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/logging"
	"github.com/lukasa-pay/lukasa/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBank()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var backend ledger.Ledger
	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db = pool

		pg := ledger.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("ensure schema", "error", err)
			os.Exit(1)
		}
		backend = pg
	} else {
		backend = ledger.NewInMemory()
	}

	walletInput, closeInput, err := openWallets(cfg.WalletsFile)
	if err != nil {
		logger.Error("open wallets input", "error", err)
		os.Exit(1)
	}
	loaded, err := ledger.LoadWallets(ctx, backend, walletInput)
	closeInput()
	if err != nil {
		logger.Error("load wallets", "error", err)
		os.Exit(1)
	}
	logger.Info("wallets loaded", "count", loaded)

	svc := bank.NewService(backend, logger)
	handler := bank.NewHandler(svc)

	srv := server.New(cfg.Address(), server.Options{AppName: cfg.AppName, MaxWorkers: cfg.MaxWorkers})
	server.RegisterHealth(srv.App(), db, nil)
	bank.RegisterRoutes(srv.App(), handler)

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

	logger.Info("bank exited cleanly")
}

func openWallets(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
