package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"wishTracker/internal/app"
	"wishTracker/internal/config"
	"wishTracker/internal/logger"
)

func main() {
	configPath := flag.String("config", envOr("WISH_CONFIG", "config.yml"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "wish-tracker:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		return err
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: stopped with error", err)
		return err
	}
	logger.Info("App: stopped")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
