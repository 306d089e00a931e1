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
	"golang.org/x/sync/errgroup"

	"github.com/abdulaziz1076-hash/fifi/internal/budget"
	"github.com/abdulaziz1076-hash/fifi/internal/config"
	"github.com/abdulaziz1076-hash/fifi/internal/goal"
	apphttp "github.com/abdulaziz1076-hash/fifi/internal/http"
	"github.com/abdulaziz1076-hash/fifi/internal/ledger"
	applog "github.com/abdulaziz1076-hash/fifi/internal/log"
	"github.com/abdulaziz1076-hash/fifi/internal/notify"
	"github.com/abdulaziz1076-hash/fifi/internal/report"
	"github.com/abdulaziz1076-hash/fifi/internal/store"
	"github.com/abdulaziz1076-hash/fifi/internal/sweep"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.FromEnv("fifi"))
	applog.SetDefault(logger)

	logger.Info("Starting fifi server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose the data backend (default: memory).
	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		sqliteStore, err := store.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = sqliteStore
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		st = store.NewMemory()
		logger.Info("Initialized memory backend")
	}
	defer st.Close()

	// Notifications go to AMQP when configured, otherwise to the log.
	var sink notify.Sink
	if cfg.AMQPURL != "" {
		amqpSink, err := notify.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP sink, falling back to log", "error", err)
			sink = notify.SlogSink{}
		} else {
			defer amqpSink.Close()
			sink = amqpSink
			logger.Info("Notifications routed to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		sink = notify.SlogSink{}
	}

	view := ledger.NewView(st)
	budgets := budget.NewEngine(view, st, sink, nil)
	goals := goal.NewEngine(view, st, sink, nil)
	reports := report.NewAggregator(view, budgets, goals, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	budgets.Restore(ctx)
	goals.Restore(ctx)

	srv := apphttp.NewServer(":"+cfg.Port, st, budgets, goals, reports)
	scheduler := sweep.NewScheduler(budgets, goals, cfg.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := scheduler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
