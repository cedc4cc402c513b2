package models

import (
	"strings"
	"time"
)

// FixtureFinished is the only fixture status eligible for resolution
const FixtureFinished = "FINISHED"

// MoneylineBlock carries raw American odds as delivered by the feed
type MoneylineBlock struct {
	Home any `json:"moneyline_home"`
	Draw any `json:"moneyline_draw"`
	Away any `json:"moneyline_visiting"`
}

// SpreadBlock carries handicap lines and their raw American odds
type SpreadBlock struct {
	HomeLine   float64 `json:"spread_home"`
	AwayLine   float64 `json:"spread_visiting"`
	HomeAdjust any     `json:"spread_adjust_home"`
	AwayAdjust any     `json:"spread_adjust_visiting"`
}

// TotalBlock carries an over/under line and its raw American odds
type TotalBlock struct {
	Points      float64 `json:"total_points"`
	OverAdjust  any     `json:"over_adjust"`
	UnderAdjust any     `json:"under_adjust"`
}

// OddsFeedRecord is one fixture from the odds source
type OddsFeedRecord struct {
	SourceKey string          `json:"source_key"`
	Sport     string          `json:"sport"`
	League    string          `json:"league"`
	StartTime time.Time       `json:"start_time"`
	HomeTeam  string          `json:"home_team"`
	AwayTeam  string          `json:"away_team"`
	Period    string          `json:"period"`
	Moneyline *MoneylineBlock `json:"moneyline,omitempty"`
	Spread    *SpreadBlock    `json:"spread,omitempty"`
	Total     *TotalBlock     `json:"total,omitempty"`
}

// KafkaOddsFeedMessage is a batch of odds records published on the feed topic
type KafkaOddsFeedMessage struct {
	Records   []OddsFeedRecord `json:"records"`
	Timestamp time.Time        `json:"timestamp"`
	BatchID   string           `json:"batch_id"`
}

// Fixture is one reported match from the results source
type Fixture struct {
	HomeID   string    `json:"home_id"`
	AwayID   string    `json:"away_id"`
	HomeName string    `json:"home_name"`
	AwayName string    `json:"away_name"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	Score    *Score    `json:"score,omitempty"`
}

// Finished reports whether the fixture has a final score
func (f *Fixture) Finished() bool {
	return strings.EqualFold(f.Status, FixtureFinished) && f.Score != nil
}

// KnowledgeEntry maps an external team id to the name used locally
type KnowledgeEntry struct {
	ExternalName  string `json:"external_name"`
	CanonicalName string `json:"canonical_name"`
}
