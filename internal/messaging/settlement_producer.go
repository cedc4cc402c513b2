package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducerConfig holds Kafka producer configuration
type KafkaProducerConfig struct {
	Brokers []string
	Topic   string // e.g., "settlements"
}

// SettlementProducer publishes settlement log entries, one message each,
// keyed by entry id
type SettlementProducer struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewSettlementProducer creates a producer
func NewSettlementProducer(config KafkaProducerConfig, logger zerolog.Logger) *SettlementProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newSettlementProducer(writer, config.Topic, logger)
}

func newSettlementProducer(w messageWriter, topic string, logger zerolog.Logger) *SettlementProducer {
	return &SettlementProducer{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "settlement_producer").Logger(),
	}
}

// Publish writes all entries in one call
func (p *SettlementProducer) Publish(ctx context.Context, entries []models.SettlementLog) error {
	if len(entries) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(entries))
	for _, e := range entries {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal settlement %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.ID.String()),
			Value: value,
			Time:  e.SettledAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish settlements: %w", err)
	}

	p.logger.Info().Int("count", len(msgs)).Str("topic", p.topic).Msg("published settlements")
	return nil
}

// Close flushes and closes the writer
func (p *SettlementProducer) Close() error {
	return p.writer.Close()
}
