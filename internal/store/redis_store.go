package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

const defaultKeyPrefix = "wager:"

// RedisStore keeps the state as one JSON value, the history as a list and
// the knowledge cache as a hash. None of the keys expire.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a store over an existing client
func NewRedisStore(client redis.UniversalClient, prefix string, logger zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}
}

func (s *RedisStore) stateKey() string     { return s.prefix + "state" }
func (s *RedisStore) logsKey() string      { return s.prefix + "logs" }
func (s *RedisStore) knowledgeKey() string { return s.prefix + "knowledge" }

// LoadState returns nil when no state was saved yet
func (s *RedisStore) LoadState(ctx context.Context) (*models.State, error) {
	data, err := s.client.Get(ctx, s.stateKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state models.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Commit writes the state and pushes the entries in one MULTI block. The
// state key is watched, so a write by another process between the version
// check and EXEC aborts the commit.
func (s *RedisStore) Commit(ctx context.Context, state *models.State, entries ...models.SettlementLog) error {
	next := *state
	next.Version = state.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	values := make([]any, 0, len(entries))
	for _, e := range entries {
		entry, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
		values = append(values, entry)
	}

	txf := func(tx *redis.Tx) error {
		stored, err := s.storedVersion(ctx, tx)
		if err != nil {
			return err
		}
		if stored != state.Version {
			return fmt.Errorf("%w: stored version %d, have %d", service.ErrStaleState, stored, state.Version)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.stateKey(), data, 0)
			if len(values) > 0 {
				pipe.RPush(ctx, s.logsKey(), values...)
			}
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, s.stateKey())
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: state key changed during commit", service.ErrStaleState)
	}
	if err != nil {
		if errors.Is(err, service.ErrStaleState) {
			return err
		}
		return fmt.Errorf("failed to commit state to Redis: %w", err)
	}

	state.Version = next.Version
	s.logger.Debug().
		Int64("version", state.Version).
		Int("entries", len(entries)).
		Int("groups", len(state.WagerGroups)).
		Msg("committed state")
	return nil
}

func (s *RedisStore) storedVersion(ctx context.Context, tx *redis.Tx) (int64, error) {
	data, err := tx.Get(ctx, s.stateKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return 0, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return stored.Version, nil
}

// RecentLogs returns the last limit entries, oldest first
func (s *RedisStore) RecentLogs(ctx context.Context, limit int) ([]models.SettlementLog, error) {
	if limit <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, s.logsKey(), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}

	logs := make([]models.SettlementLog, 0, len(raw))
	for _, r := range raw {
		var entry models.SettlementLog
		if err := json.Unmarshal([]byte(r), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log entry: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// Lookup finds the canonical name for an external team id
func (s *RedisStore) Lookup(ctx context.Context, externalID string) (models.KnowledgeEntry, bool, error) {
	data, err := s.client.HGet(ctx, s.knowledgeKey(), externalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.KnowledgeEntry{}, false, nil
	} else if err != nil {
		return models.KnowledgeEntry{}, false, fmt.Errorf("failed to look up %s: %w", externalID, err)
	}

	var entry models.KnowledgeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.KnowledgeEntry{}, false, fmt.Errorf("failed to unmarshal knowledge entry: %w", err)
	}
	return entry, true, nil
}

// Remember stores confirmed mappings with a single HSET
func (s *RedisStore) Remember(ctx context.Context, entries map[string]models.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]any, 0, 2*len(entries))
	for id, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal knowledge entry: %w", err)
		}
		values = append(values, id, data)
	}
	if err := s.client.HSet(ctx, s.knowledgeKey(), values...).Err(); err != nil {
		return fmt.Errorf("failed to remember %d mappings: %w", len(entries), err)
	}
	return nil
}

// Close is a no-op, the client belongs to the caller
func (s *RedisStore) Close() error {
	return nil
}
