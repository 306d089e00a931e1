// fifi-notifier consumes notification events from the broker and delivers
// them to the log. It runs as a separate process so that slow or failing
// delivery never blocks the main server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abdulaziz1076-hash/fifi/internal/config"
	applog "github.com/abdulaziz1076-hash/fifi/internal/log"
	"github.com/abdulaziz1076-hash/fifi/internal/notify"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.FromEnv("fifi-notifier"))
	applog.SetDefault(logger)

	logger.Info("Starting fifi-notifier")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	sink, err := notify.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sink.Consume(ctx, func(ev notify.Event) error {
		level := slog.LevelInfo
		switch ev.Severity {
		case "high", "urgent":
			level = slog.LevelWarn
		}
		logger.Logger.Log(ctx, level, "Notification delivered",
			"component", "fifi-notifier",
			"kind", ev.Kind,
			"title", ev.Title,
			"message", ev.Message,
			"severity", ev.Severity,
			"emitted_at", ev.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Notifier stopped gracefully")
}
