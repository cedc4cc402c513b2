// Package catalog turns odds feed records into offers that can be bet on.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/pkg/bettype"
	"github.com/cypherlabdev/wager-settlement-service/pkg/odds"
)

var (
	// ErrFiltered means the record is outside the configured scope, not broken
	ErrFiltered = errors.New("record filtered")

	ErrIncomplete = errors.New("incomplete feed record")
	ErrNoMarkets  = errors.New("feed record has no markets")
)

// Config selects which leagues are offered. With no prefixes and no patterns
// every league is kept.
type Config struct {
	LeaguePrefixes []string
	LeaguePatterns []string
}

// Catalog filters and converts feed records
type Catalog struct {
	prefixes []string
	patterns []*regexp.Regexp
	logger   zerolog.Logger
	now      func() time.Time
}

// New compiles the league filter
func New(config Config, logger zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		prefixes: config.LeaguePrefixes,
		logger:   logger.With().Str("component", "catalog").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, p := range config.LeaguePatterns {
		re, err := regexp.Compile("^(?:" + p + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid league pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// Keep reports whether a league passes the filter
func (c *Catalog) Keep(league string) bool {
	if len(c.prefixes) == 0 && len(c.patterns) == 0 {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(league, p) {
			return true
		}
	}
	for _, re := range c.patterns {
		if re.MatchString(league) {
			return true
		}
	}
	return false
}

// FromFeed converts one record. Records for other sports, non full-match
// periods or filtered leagues return ErrFiltered. A bad odds value fails
// only this record.
func (c *Catalog) FromFeed(rec models.OddsFeedRecord) (*models.Offer, error) {
	if !strings.HasPrefix(strings.ToLower(rec.Sport), "soccer") {
		return nil, fmt.Errorf("%w: sport %q", ErrFiltered, rec.Sport)
	}
	if !strings.HasPrefix(strings.ToLower(rec.Period), "m") {
		return nil, fmt.Errorf("%w: period %q", ErrFiltered, rec.Period)
	}
	if !c.Keep(rec.League) {
		return nil, fmt.Errorf("%w: league %q", ErrFiltered, rec.League)
	}

	home, away := strings.TrimSpace(rec.HomeTeam), strings.TrimSpace(rec.AwayTeam)
	if home == "" || away == "" || rec.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrIncomplete, rec.SourceKey)
	}

	oddsCfg, err := convertMarkets(rec)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.SourceKey, err)
	}
	if len(oddsCfg.Moneyline) == 0 && len(oddsCfg.Spread) == 0 && oddsCfg.Total == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMarkets, rec.SourceKey)
	}

	start := rec.StartTime.UTC().Truncate(time.Minute)
	teams := [2]string{home, away}
	return &models.Offer{
		Match: models.Match{
			Key:       bettype.MatchKey(start, teams),
			Teams:     teams,
			League:    rec.League,
			MatchTime: start,
			Period:    rec.Period,
		},
		SourceKey: rec.SourceKey,
		Odds:      oddsCfg,
		UpdatedAt: c.now(),
	}, nil
}

func convertMarkets(rec models.OddsFeedRecord) (models.OddsConfig, error) {
	var cfg models.OddsConfig

	if ml := rec.Moneyline; ml != nil {
		prices, err := odds.Convert(ml.Home, ml.Draw, ml.Away)
		if err != nil {
			return cfg, fmt.Errorf("moneyline: %w", err)
		}
		cfg.Moneyline = prices
	}

	if sp := rec.Spread; sp != nil {
		prices, err := odds.Convert(sp.HomeAdjust, sp.AwayAdjust)
		if err != nil {
			return cfg, fmt.Errorf("spread: %w", err)
		}
		cfg.Spread = []models.SpreadLine{
			{Line: decimal.NewFromFloat(sp.HomeLine), Multiplier: prices[0]},
			{Line: decimal.NewFromFloat(sp.AwayLine), Multiplier: prices[1]},
		}
	}

	if tot := rec.Total; tot != nil {
		prices, err := odds.Convert(tot.OverAdjust, tot.UnderAdjust)
		if err != nil {
			return cfg, fmt.Errorf("total: %w", err)
		}
		cfg.Total = &models.TotalLine{
			Threshold: decimal.NewFromFloat(tot.Points),
			Over:      prices[0],
			Under:     prices[1],
		}
	}
	return cfg, nil
}

// Build converts a batch, skipping filtered records silently and logging
// broken ones. It returns the offers and the number of broken records.
func (c *Catalog) Build(records []models.OddsFeedRecord) ([]*models.Offer, int) {
	offers := make([]*models.Offer, 0, len(records))
	rejected := 0
	for _, rec := range records {
		offer, err := c.FromFeed(rec)
		if err != nil {
			if errors.Is(err, ErrFiltered) {
				continue
			}
			rejected++
			c.logger.Warn().Err(err).Str("source_key", rec.SourceKey).Msg("dropping feed record")
			continue
		}
		offers = append(offers, offer)
	}
	return offers, rejected
}
