package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahsan757/trader/internal/config"
	"github.com/ahsan757/trader/internal/database"
	"github.com/ahsan757/trader/internal/events"
	"github.com/ahsan757/trader/internal/events/kafka"
	"github.com/ahsan757/trader/internal/ledger"
	"github.com/ahsan757/trader/internal/repository"
	"github.com/ahsan757/trader/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var store repository.ProjectStore
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store = repository.NewMemoryStore()
		logger.Info("using in-memory project store")
	default:
		db, err := database.Open(context.Background(), cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			db.Close()
		}()

		if err := repository.Migrate(context.Background(), db); err != nil {
			logger.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}

		store = repository.NewProjectRepository(db)
	}

	var publisher events.Publisher = events.NewNoopPublisher()
	if len(cfg.Events.Brokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.Events.Brokers)
		defer func() {
			_ = kafkaPublisher.Close()
		}()
		publisher = kafkaPublisher
		logger.Info("publishing ledger events to kafka", slog.String("topic", cfg.Events.Topic))
	}

	service := ledger.NewService(store, publisher, cfg.Events.Topic, logger)

	e := server.New(cfg, logger, service)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
