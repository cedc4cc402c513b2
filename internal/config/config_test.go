package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

// TestLoadConfig_Defaults tests loading configuration with default values
func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, 8082, config.Server.Port)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)

	assert.Equal(t, []string{"localhost:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "odds_feed", config.Kafka.OddsTopic)
	assert.Equal(t, "settlements", config.Kafka.SettlementTopic)
	assert.Equal(t, "wager-settlement", config.Kafka.GroupID)

	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 6*time.Hour, config.Redis.TTL)

	assert.Equal(t, "redis", config.Storage.Driver)
	assert.Equal(t, "wager:", config.Storage.KeyPrefix)

	assert.Equal(t, "https://api.football-data.org/v1", config.Results.BaseURL)
	assert.Equal(t, 20*time.Second, config.Results.Timeout)
	assert.Equal(t, 99, config.Results.MaxDays)

	assert.Empty(t, config.Catalog.LeaguePrefixes)
	assert.Empty(t, config.Catalog.LeaguePatterns)

	assert.Equal(t, 5, config.Resolver.MaxCandidates)
	assert.Contains(t, config.Resolver.NoiseTokens, "fc")

	assert.True(t, decimal.NewFromInt(10000).Equal(config.Session.OpeningBalance()))

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

// TestLoadConfig_WithFile tests loading configuration from file
func TestLoadConfig_WithFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 45s

kafka:
  brokers:
    - broker1:9092
    - broker2:9092
  odds_topic: raw_odds
  settlement_topic: settled
  group_id: test_group

redis:
  addr: redis:6379
  password: test_password
  db: 1
  ttl: 30m

storage:
  driver: sqlite3
  dsn: /var/lib/wager/ledger.db

results:
  token: secret
  max_days: 30

catalog:
  league_prefixes:
    - England
  league_patterns:
    - "Spain - .*"

resolver:
  max_candidates: 3
  noise_tokens: [fc, united]

session:
  initial_balance: 2500.5

logging:
  level: debug
  format: console
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 45*time.Second, config.Server.ReadTimeout)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "raw_odds", config.Kafka.OddsTopic)
	assert.Equal(t, "settled", config.Kafka.SettlementTopic)
	assert.Equal(t, "test_group", config.Kafka.GroupID)

	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "test_password", config.Redis.Password)
	assert.Equal(t, 1, config.Redis.DB)
	assert.Equal(t, 30*time.Minute, config.Redis.TTL)

	assert.Equal(t, "sqlite3", config.Storage.Driver)
	assert.Equal(t, "/var/lib/wager/ledger.db", config.Storage.DSN)

	assert.Equal(t, "secret", config.Results.Token)
	assert.Equal(t, 30, config.Results.MaxDays)

	assert.Equal(t, []string{"England"}, config.Catalog.LeaguePrefixes)
	assert.Equal(t, []string{"Spain - .*"}, config.Catalog.LeaguePatterns)

	assert.Equal(t, 3, config.Resolver.MaxCandidates)
	assert.Equal(t, []string{"fc", "united"}, config.Resolver.NoiseTokens)

	assert.True(t, decimal.RequireFromString("2500.5").Equal(config.Session.OpeningBalance()))

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
}

// TestLoadConfig_InvalidFile tests loading with non-existent file
func TestLoadConfig_InvalidFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_MalformedFile tests loading with values of the wrong type
func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: invalid_port
  read_timeout: not_a_duration
`)

	config, err := LoadConfig(path)

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_PartialFile tests loading with partial configuration
func TestLoadConfig_PartialFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090

kafka:
  brokers:
    - broker1:9092
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, []string{"broker1:9092"}, config.Kafka.Brokers)

	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, "odds_feed", config.Kafka.OddsTopic)
	assert.Equal(t, "redis", config.Storage.Driver)
}

// TestLoadConfig_EnvironmentVariables tests environment variable overrides
func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("WAGER_SETTLEMENT_SERVER_PORT", "7777")
	t.Setenv("WAGER_SETTLEMENT_REDIS_ADDR", "env-redis:6379")
	t.Setenv("WAGER_SETTLEMENT_STORAGE_DRIVER", "pgx")
	t.Setenv("WAGER_SETTLEMENT_STORAGE_DSN", "postgres://u:p@db/ledger")
	t.Setenv("WAGER_SETTLEMENT_SESSION_INITIAL_BALANCE", "500")

	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 7777, config.Server.Port)
	assert.Equal(t, "env-redis:6379", config.Redis.Addr)
	assert.Equal(t, "pgx", config.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db/ledger", config.Storage.DSN)
	assert.True(t, decimal.NewFromInt(500).Equal(config.Session.OpeningBalance()))
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"sql driver without dsn", "storage:\n  driver: postgres\n"},
		{"unknown driver", "storage:\n  driver: mongo\n"},
		{"negative balance", "session:\n  initial_balance: -1\n"},
		{"zero result window", "results:\n  max_days: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, config)
		})
	}
}

func TestValidate(t *testing.T) {
	config := &Config{
		Storage: StorageConfig{Driver: "sqlite3", DSN: ":memory:"},
		Results: ResultsConfig{MaxDays: 1},
	}
	assert.NoError(t, config.Validate())

	config.Storage = StorageConfig{Driver: "redis"}
	assert.NoError(t, config.Validate())
}
