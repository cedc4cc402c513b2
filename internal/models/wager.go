package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money is an amount of balance currency
type Money = decimal.Decimal

// BetKind tags a wager group with its bet type
type BetKind string

const (
	KindMoneyline  BetKind = "Moneyline"
	KindSpread     BetKind = "Spread"
	KindTotalGoals BetKind = "TotalGoals"
)

// Outcome is the sub-outcome a wager backs.
// Moneyline uses all three values; spread and totals use only +1/-1.
type Outcome int

const (
	Home  Outcome = 1
	Draw  Outcome = 0
	Away  Outcome = -1
	Over  Outcome = 1
	Under Outcome = -1
)

// Wager is one stake as placed by the user
type Wager struct {
	Stake   Money   `json:"stake"`
	Outcome Outcome `json:"outcome"`
}

// SpreadLine is one side of a handicap market
type SpreadLine struct {
	Line       decimal.Decimal `json:"line"`       // goal handicap applied to this side
	Multiplier decimal.Decimal `json:"multiplier"` // decimal odds
}

// TotalLine is an over/under market
type TotalLine struct {
	Threshold decimal.Decimal `json:"threshold"`
	Over      decimal.Decimal `json:"over"`
	Under     decimal.Decimal `json:"under"`
}

// OddsConfig holds whichever markets an event offers
type OddsConfig struct {
	Moneyline []decimal.Decimal `json:"moneyline,omitempty"` // home, draw, away
	Spread    []SpreadLine      `json:"spread,omitempty"`    // home, away
	Total     *TotalLine        `json:"total,omitempty"`
}

// WagerGroup is the persisted record of all wagers on one bet type of one match
type WagerGroup struct {
	Key       string     `json:"key"`
	Type      BetKind    `json:"type"`
	MatchKey  string     `json:"match_key"`
	MatchTime time.Time  `json:"match_time"`
	Period    string     `json:"period,omitempty"`
	Odds      OddsConfig `json:"odds"`
	Wagers    []Wager    `json:"bets"`
	Seq       int64      `json:"seq"` // insertion order, breaks settlement time ties
}

// WagerDetail is one line of a settlement breakdown
type WagerDetail struct {
	Stake     Money  `json:"stake"`
	Selection string `json:"selection"` // e.g. "Home (+1.25) Win @ 1.91"
}

// SettlementLog is an append-only history entry
type SettlementLog struct {
	ID            uuid.UUID     `json:"id"`
	Match         string        `json:"match"`
	Date          time.Time     `json:"date"`
	TotalSpent    Money         `json:"total_spend"`
	TotalReturned Money         `json:"total_get"`
	Bets          []WagerDetail `json:"bets"`
	SettledAt     time.Time     `json:"settled_at"`
}

// Net is the profit or loss of the entry
func (l SettlementLog) Net() Money {
	return l.TotalReturned.Sub(l.TotalSpent)
}
