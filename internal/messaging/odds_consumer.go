package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/wager-settlement-service/internal/catalog"
	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

// OddsConsumer reads odds feed batches from Kafka and caches the offers
type OddsConsumer struct {
	reader  *kafka.Reader
	catalog *catalog.Catalog
	cache   service.OfferCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "odds_feed"
	GroupID string   // e.g., "wager-settlement"
}

// NewOddsConsumer creates a new Kafka consumer
func NewOddsConsumer(
	config KafkaConsumerConfig,
	cat *catalog.Catalog,
	cache service.OfferCache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OddsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000,
	})

	return &OddsConsumer{
		reader:  reader,
		catalog: cat,
		cache:   cache,
		metrics: m,
		logger:  logger.With().Str("component", "odds_consumer").Logger(),
	}
}

// Start consumes until ctx is canceled
func (c *OddsConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// left uncommitted so the batch is redelivered
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage turns one feed batch into cached offers. Broken records are
// dropped; only a cache failure fails the batch.
func (c *OddsConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var batch models.KafkaOddsFeedMessage
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Int("record_count", len(batch.Records)).
		Str("batch_id", batch.BatchID).
		Msg("processing odds feed batch")

	offers, rejected := c.catalog.Build(batch.Records)
	c.metrics.OffersRejected(rejected)

	if err := c.cache.SetBatch(ctx, offers); err != nil {
		return fmt.Errorf("failed to cache offers: %w", err)
	}
	c.metrics.OffersIngested(len(offers))

	c.logger.Info().
		Int("input_count", len(batch.Records)).
		Int("offer_count", len(offers)).
		Int("rejected", rejected).
		Str("batch_id", batch.BatchID).
		Msg("processed and cached offers")
	return nil
}

// Close closes the Kafka reader
func (c *OddsConsumer) Close() error {
	return c.reader.Close()
}
