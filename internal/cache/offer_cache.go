package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

const offerPrefix = "offer:"

// OfferCache keeps offered events in Redis until they expire
type OfferCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // how long an offer stays open without a feed update
}

// NewRedisClient opens a client from config
func NewRedisClient(config RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
}

// NewOfferCache creates an offer cache over an existing client
func NewOfferCache(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *OfferCache {
	return &OfferCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "offer_cache").Logger(),
	}
}

// offer:{league}:{match_key}
func offerKey(league, matchKey string) string {
	return offerPrefix + league + ":" + matchKey
}

// leagueFromKey undoes offerKey; match keys never contain ':'
func leagueFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, offerPrefix)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", false
	}
	return rest[:i], true
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Set caches one offer
func (c *OfferCache) Set(ctx context.Context, offer *models.Offer) error {
	key := offerKey(offer.Match.League, offer.Match.Key)

	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to marshal offer: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().Str("key", key).Dur("ttl", c.ttl).Msg("cached offer")
	return nil
}

// Get returns a cached offer, wrapping service.ErrOfferNotFound when it is
// absent or expired
func (c *OfferCache) Get(ctx context.Context, league, matchKey string) (*models.Offer, error) {
	data, err := c.client.Get(ctx, offerKey(league, matchKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", service.ErrOfferNotFound, league, matchKey)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var offer models.Offer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal offer: %w", err)
	}
	return &offer, nil
}

// SetBatch caches offers in one pipeline
func (c *OfferCache) SetBatch(ctx context.Context, offers []*models.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, offer := range offers {
		data, err := json.Marshal(offer)
		if err != nil {
			c.logger.Error().Err(err).Str("source_key", offer.SourceKey).Msg("failed to marshal offer")
			continue
		}
		pipe.Set(ctx, offerKey(offer.Match.League, offer.Match.Key), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().Int("count", len(offers)).Msg("cached batch of offers")
	return nil
}

func (c *OfferCache) scan(ctx context.Context, pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		var batch []string
		var err error
		batch, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}
		keys = append(keys, batch...)
		if cursor == 0 {
			return keys, nil
		}
	}
}

// GetByLeague returns every cached offer of a league. Keys that expire
// between the scan and the read are skipped.
func (c *OfferCache) GetByLeague(ctx context.Context, league string) ([]*models.Offer, error) {
	keys, err := c.scan(ctx, offerPrefix+globEscaper.Replace(league)+":*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*models.Offer{}, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read offers: %w", err)
	}

	offers := make([]*models.Offer, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var offer models.Offer
		if err := json.Unmarshal([]byte(raw), &offer); err != nil {
			c.logger.Warn().Err(err).Str("key", keys[i]).Msg("failed to unmarshal offer")
			continue
		}
		// a league name that is a prefix of another league with ':' in it
		if offer.Match.League != league {
			continue
		}
		offers = append(offers, &offer)
	}
	return offers, nil
}

// Leagues lists the leagues with at least one cached offer
func (c *OfferCache) Leagues(ctx context.Context) ([]string, error) {
	keys, err := c.scan(ctx, offerPrefix+"*")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, k := range keys {
		if league, ok := leagueFromKey(k); ok {
			seen[league] = struct{}{}
		}
	}
	leagues := make([]string, 0, len(seen))
	for l := range seen {
		leagues = append(leagues, l)
	}
	sort.Strings(leagues)
	return leagues, nil
}

// Ping checks Redis connection
func (c *OfferCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *OfferCache) Close() error {
	return c.client.Close()
}
