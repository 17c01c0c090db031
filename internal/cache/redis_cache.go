package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
)

// RedisCache caches frozen market catalogues in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 15 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

func catalogueKey(eventID string) string {
	return fmt.Sprintf("catalogue:%s", eventID)
}

// Set caches a catalogue under its event. The whole catalogue goes into a
// single SET, so readers see either the previous run or the new one, never
// a partially written mix.
func (c *RedisCache) Set(ctx context.Context, catalogue *models.MarketCatalogue) error {
	key := catalogueKey(catalogue.EventID)

	data, err := json.Marshal(catalogue)
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Str("catalogue_id", catalogue.ID.String()).
		Dur("ttl", c.ttl).
		Msg("cached catalogue")

	return nil
}

// Get retrieves the cached catalogue for an event
func (c *RedisCache) Get(ctx context.Context, eventID string) (*models.MarketCatalogue, error) {
	key := catalogueKey(eventID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("catalogue not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var catalogue models.MarketCatalogue
	if err := json.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue: %w", err)
	}

	return &catalogue, nil
}

// SetBatch caches multiple catalogues through a pipeline
func (c *RedisCache) SetBatch(ctx context.Context, catalogues []*models.MarketCatalogue) error {
	if len(catalogues) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()

	for _, catalogue := range catalogues {
		data, err := json.Marshal(catalogue)
		if err != nil {
			c.logger.Error().Err(err).Str("event_id", catalogue.EventID).Msg("failed to marshal catalogue")
			continue
		}
		pipe.Set(ctx, catalogueKey(catalogue.EventID), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(catalogues)).
		Msg("cached batch of catalogues")

	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
