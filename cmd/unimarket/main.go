package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"unimarket/internal/infra/api"
	"unimarket/internal/infra/config"
	"unimarket/internal/infra/obs"
	"unimarket/internal/infra/storage/file"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	sessions, err := file.NewSessionStore(cfg.StateDir)
	if err != nil {
		logger.Error("session store unavailable", "error", err)
		os.Exit(1)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		reader:   bufio.NewReader(os.Stdin),
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, a.token, logger)
	if err != nil {
		logger.Error("api client unavailable", "error", err)
		os.Exit(1)
	}
	a.api = client

	if sess, err := sessions.Load(); err != nil {
		logger.Warn("stored session unreadable", "error", err)
	} else if sess != nil {
		if sess.Expired(time.Now()) {
			logger.Info("stored session expired", "user", sess.User.Email)
			_ = sessions.Clear()
		} else {
			a.setSession(sess)
			fmt.Printf("Welcome back, %s!\n", sess.User.Name)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("unimarket — campus marketplace")
	a.run(ctx)
	fmt.Println("Goodbye!")
}
