package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
	"github.com/cypherlabdev/odds-calibration-service/internal/service"
)

// KafkaConsumer consumes quoted-price batches from Kafka and calibrates them
type KafkaConsumer struct {
	reader     *kafka.Reader
	calibrator service.Calibrator
	cache      service.Cache
	logger     zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "quoted_prices"
	GroupID string   // e.g., "odds-calibration"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	calibrator service.Calibrator,
	cache service.Cache,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return &KafkaConsumer{
		reader:     reader,
		calibrator: calibrator,
		cache:      cache,
		logger:     logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
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
				if err == context.Canceled {
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
				// Don't commit if processing failed
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage calibrates every event in one quoted-price batch and
// publishes the resulting catalogues
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var kafkaMsg models.KafkaQuotedPricesMessage
	if err := json.Unmarshal(msg.Value, &kafkaMsg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Int("event_count", len(kafkaMsg.Events)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processing quoted-price batch")

	events := make([]*models.EventPrices, len(kafkaMsg.Events))
	for i := range kafkaMsg.Events {
		events[i] = &kafkaMsg.Events[i]
	}

	catalogues, err := c.calibrator.CalibrateBatch(events)
	if err != nil {
		return fmt.Errorf("failed to calibrate events: %w", err)
	}

	if err := c.cache.SetBatch(ctx, catalogues); err != nil {
		return fmt.Errorf("failed to cache catalogues: %w", err)
	}

	c.logger.Info().
		Int("input_count", len(events)).
		Int("output_count", len(catalogues)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("calibrated and cached catalogues")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
