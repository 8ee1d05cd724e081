package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"unimarket/internal/infra/config"
	"unimarket/internal/infra/obs"
	"unimarket/internal/stub"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	store := stub.NewStore()
	if err := stub.SeedUsers(store); err != nil {
		logger.Error("seed users failed", "error", err)
		os.Exit(1)
	}
	if cfg.ListingFixtures != "" {
		if err := stub.LoadListingFixtures(store, cfg.ListingFixtures, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingFixtures)
		}
	}

	server := stub.NewServer(stub.Config{
		Env:       cfg.Env,
		Addr:      cfg.StubHTTPAddr,
		JWTSecret: cfg.StubJWTSecret,
		TokenTTL:  cfg.StubTokenTTL,
	}, store, logger)
	httpServer := &http.Server{Addr: cfg.StubHTTPAddr, Handler: server.Router(cfg.Env)}

	go func() {
		logger.Info("stub backend listening", "addr", cfg.StubHTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	logger.Info("stub backend stopped")
}
