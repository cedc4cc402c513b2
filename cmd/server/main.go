package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/wager-settlement-service/internal/cache"
	"github.com/cypherlabdev/wager-settlement-service/internal/catalog"
	"github.com/cypherlabdev/wager-settlement-service/internal/config"
	httpHandler "github.com/cypherlabdev/wager-settlement-service/internal/handler/http"
	"github.com/cypherlabdev/wager-settlement-service/internal/messaging"
	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
	"github.com/cypherlabdev/wager-settlement-service/internal/store"
)

func configPath() string {
	if p := os.Getenv("WAGER_SETTLEMENT_CONFIG"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting wager-settlement-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the offer cache and, by default, the ledger store
	redisClient := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	offerCache := cache.NewOfferCache(redisClient, cfg.Redis.TTL, logger)
	defer offerCache.Close()

	if err := offerCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	backend, err := store.Open(ctx, store.Config{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		KeyPrefix: cfg.Storage.KeyPrefix,
	}, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open store")
	}
	defer backend.Close()
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("store opened")

	m := metrics.New(prometheus.DefaultRegisterer)
	runner := settlement.NewRunner(m, logger)

	ledger, err := service.LoadLedgerService(ctx, backend, offerCache, runner, cfg.Session.OpeningBalance(), m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load ledger")
	}
	logger.Info().Str("balance", ledger.Balance().String()).Msg("ledger loaded")

	producer := messaging.NewSettlementProducer(messaging.KafkaProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.SettlementTopic,
	}, logger)
	defer producer.Close()
	ledger.SetPublisher(producer)

	cat, err := catalog.New(catalog.Config{
		LeaguePrefixes: cfg.Catalog.LeaguePrefixes,
		LeaguePatterns: cfg.Catalog.LeaguePatterns,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid catalog configuration")
	}

	consumer := messaging.NewOddsConsumer(
		messaging.KafkaConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OddsTopic,
			GroupID: cfg.Kafka.GroupID,
		},
		cat,
		offerCache,
		m,
		logger,
	)
	defer consumer.Close()

	// Start Kafka consumer in goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("Kafka consumer failed")
		}
	}()

	ledgerHandler := httpHandler.NewLedgerHandler(ledger, logger)

	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, offerCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	ledgerHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "wager-settlement").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if the offer cache is reachable
func readyHandler(w http.ResponseWriter, r *http.Request, offers *cache.OfferCache) {
	if err := offers.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
