// Package store persists ledger state, the settlement history and the
// knowledge cache.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

// Backend is a store that also holds the knowledge cache
type Backend interface {
	service.Store
	service.KnowledgeCache
	Close() error
}

var (
	_ Backend = (*SQLStore)(nil)
	_ Backend = (*RedisStore)(nil)
)

// Config selects the backend. Driver is one of redis, sqlite3, postgres or pgx.
type Config struct {
	Driver    string
	DSN       string
	KeyPrefix string // redis only
}

// Open builds the configured backend. The redis client is only used by the
// redis driver and is owned by the caller.
func Open(ctx context.Context, config Config, client redis.UniversalClient, logger zerolog.Logger) (Backend, error) {
	switch config.Driver {
	case "", "redis":
		if client == nil {
			return nil, fmt.Errorf("redis store needs a redis client")
		}
		return NewRedisStore(client, config.KeyPrefix, logger), nil
	default:
		return OpenSQL(ctx, config.Driver, config.DSN, logger)
	}
}
