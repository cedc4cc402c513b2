// Command reconcile attaches final results to tracked matches and settles
// every wager group that becomes due. Ambiguous team pairings are put to the
// operator on the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/wager-settlement-service/internal/cache"
	"github.com/cypherlabdev/wager-settlement-service/internal/config"
	"github.com/cypherlabdev/wager-settlement-service/internal/feed"
	"github.com/cypherlabdev/wager-settlement-service/internal/messaging"
	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/reconcile"
	"github.com/cypherlabdev/wager-settlement-service/internal/resolver"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
	"github.com/cypherlabdev/wager-settlement-service/internal/store"
	"github.com/cypherlabdev/wager-settlement-service/pkg/fingerprint"
)

func configPath() string {
	if p := os.Getenv("WAGER_SETTLEMENT_CONFIG"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Stdout belongs to the operator prompt
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "wager-reconcile").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("reconcile failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	redisClient := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	offerCache := cache.NewOfferCache(redisClient, cfg.Redis.TTL, logger)
	defer offerCache.Close()

	backend, err := store.Open(ctx, store.Config{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		KeyPrefix: cfg.Storage.KeyPrefix,
	}, redisClient, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	m := metrics.New(nil)
	ledger, err := service.LoadLedgerService(ctx, backend, offerCache,
		settlement.NewRunner(m, logger), cfg.Session.OpeningBalance(), m, logger)
	if err != nil {
		return err
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.SettlementTopic != "" {
		producer := messaging.NewSettlementProducer(messaging.KafkaProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SettlementTopic,
		}, logger)
		defer producer.Close()
		ledger.SetPublisher(producer)
	}

	res := resolver.New(
		resolver.Config{MaxCandidates: cfg.Resolver.MaxCandidates},
		backend,
		resolver.NewConsoleConfirmer(os.Stdin, os.Stdout),
		fingerprint.NewNormalizer(cfg.Resolver.NoiseTokens),
		m,
		logger,
	)
	results := feed.NewResultClient(feed.ClientConfig{
		BaseURL: cfg.Results.BaseURL,
		Token:   cfg.Results.Token,
		Timeout: cfg.Results.Timeout,
		MaxDays: cfg.Results.MaxDays,
	}, logger)

	_, err = reconcile.New(ledger, results, res, cfg.Results.MaxDays, os.Stdout, logger).Run(ctx)
	return err
}
