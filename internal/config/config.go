package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for wager-settlement-service
type Config struct {
	Server   ServerConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Results  ResultsConfig
	Catalog  CatalogConfig
	Resolver ResolverConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers         []string
	OddsTopic       string `mapstructure:"odds_topic"`       // consumed, raw bookmaker events
	SettlementTopic string `mapstructure:"settlement_topic"` // produced, settlement log entries
	GroupID         string `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // lifetime of cached offers
}

// StorageConfig selects where ledger state and history live
type StorageConfig struct {
	Driver    string // redis, sqlite3, postgres or pgx
	DSN       string
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ResultsConfig holds the results API settings
type ResultsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string
	Timeout time.Duration
	MaxDays int `mapstructure:"max_days"`
}

// CatalogConfig holds the league filter
type CatalogConfig struct {
	LeaguePrefixes []string `mapstructure:"league_prefixes"`
	LeaguePatterns []string `mapstructure:"league_patterns"`
}

// ResolverConfig holds identity resolution settings
type ResolverConfig struct {
	MaxCandidates int      `mapstructure:"max_candidates"`
	NoiseTokens   []string `mapstructure:"noise_tokens"`
}

// SessionConfig holds the settings of a fresh ledger
type SessionConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
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
	v.SetDefault("kafka.odds_topic", "odds_feed")
	v.SetDefault("kafka.settlement_topic", "settlements")
	v.SetDefault("kafka.group_id", "wager-settlement")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 6*time.Hour)

	v.SetDefault("storage.driver", "redis")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.key_prefix", "wager:")

	v.SetDefault("results.base_url", "https://api.football-data.org/v1")
	v.SetDefault("results.token", "")
	v.SetDefault("results.timeout", 20*time.Second)
	v.SetDefault("results.max_days", 99)

	v.SetDefault("catalog.league_prefixes", []string{})
	v.SetDefault("catalog.league_patterns", []string{})

	v.SetDefault("resolver.max_candidates", 5)
	v.SetDefault("resolver.noise_tokens", []string{"fc", "cf", "afc", "sc", "ac", "fk", "cd"})

	v.SetDefault("session.initial_balance", 10000)

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
	v.SetEnvPrefix("WAGER_SETTLEMENT")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "redis":
	case "sqlite3", "postgres", "pgx":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Session.InitialBalance < 0 {
		return fmt.Errorf("session.initial_balance must not be negative")
	}
	if c.Results.MaxDays <= 0 {
		return fmt.Errorf("results.max_days must be positive")
	}
	return nil
}

// OpeningBalance converts the configured initial balance to money
func (c *SessionConfig) OpeningBalance() decimal.Decimal {
	return decimal.NewFromFloat(c.InitialBalance)
}
