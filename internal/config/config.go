package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/odds-calibration-service/pkg/calibrate"
	"github.com/cypherlabdev/odds-calibration-service/pkg/devig"
	"github.com/cypherlabdev/odds-calibration-service/pkg/engine"
)

// Config holds all configuration for odds-calibration-service
type Config struct {
	Server  ServerConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Engine  EngineConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"` // Topic to consume from (quoted_prices)
	GroupID string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// EngineConfig holds calibration engine parameters
type EngineConfig struct {
	DevigMethod            string                 `mapstructure:"devig_method"`             // proportional, shin
	MinQuotableProbability float64                `mapstructure:"min_quotable_probability"` // below this an outcome gets the zero-price sentinel
	MaxCorrectScore        int                    `mapstructure:"max_correct_score"`        // correct-score grid bound quoted in catalogues
	PricePlaces            int                    `mapstructure:"price_places"`             // decimal places of quoted fair prices
	HalfScoringFraction    float64                `mapstructure:"half_scoring_fraction"`    // share of full-time scoring priced into the first-half slice
	Sports                 map[string]SportConfig `mapstructure:"sports"`
}

// SportConfig overrides select per-sport calibration defaults. Nil fields
// keep the defaults registered in the strategy table.
type SportConfig struct {
	MaxScore        *int     `mapstructure:"max_score"`
	Rho             *float64 `mapstructure:"rho"`
	SharedFraction  *float64 `mapstructure:"shared_fraction"`
	PriorTotal      *float64 `mapstructure:"prior_total"`
	PriorServeLevel *float64 `mapstructure:"prior_serve_level"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "quoted_prices")
	v.SetDefault("kafka.group_id", "odds-calibration")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 15*time.Minute)

	v.SetDefault("engine.devig_method", "shin")
	v.SetDefault("engine.min_quotable_probability", 1e-4)
	v.SetDefault("engine.max_correct_score", 4)
	v.SetDefault("engine.price_places", 3)
	v.SetDefault("engine.half_scoring_fraction", 0.5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ODDS_CALIBRATION")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToEngineParams converts config to engine parameters
func (c *EngineConfig) ToEngineParams() engine.Params {
	params := engine.Params{
		DevigMethod:            devig.Method(c.DevigMethod),
		MinQuotableProbability: c.MinQuotableProbability,
		MaxCorrectScore:        c.MaxCorrectScore,
		PricePlaces:            int32(c.PricePlaces),
		HalfScoringFraction:    c.HalfScoringFraction,
	}
	if len(c.Sports) > 0 {
		params.SportOverrides = make(map[string]calibrate.StrategyOverride, len(c.Sports))
		for sport, sc := range c.Sports {
			params.SportOverrides[strings.ToLower(sport)] = calibrate.StrategyOverride{
				MaxScore:        sc.MaxScore,
				Rho:             sc.Rho,
				SharedFraction:  sc.SharedFraction,
				PriorTotal:      sc.PriorTotal,
				PriorServeLevel: sc.PriorServeLevel,
			}
		}
	}
	return params
}
