package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"corpusview/internal/app"
	"corpusview/internal/config"
	"corpusview/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if _, err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		_ = application.Close()
		os.Exit(1)
	}

	s := application.Session().Summary()
	logger.Info("session ready",
		"articles", s.Articles.Full,
		"events", s.Events.Full,
		"topics", s.Topics.Full,
		"entities", s.Entities.Full)
}
