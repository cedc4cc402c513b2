package models

import (
	"fmt"
	"time"
)

// Score is a final result, home goals first.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// Match is the persisted record of a tracked fixture
type Match struct {
	Key       string    `json:"key"`
	Teams     [2]string `json:"teams"` // home, away
	League    string    `json:"league,omitempty"`
	MatchTime time.Time `json:"match_time"`
	Period    string    `json:"period,omitempty"`
	Result    *Score    `json:"result,omitempty"`
	Unmatch   bool      `json:"unmatch,omitempty"` // operator declared no feed fixture corresponds
}

// Name renders "Home - Away"
func (m *Match) Name() string {
	return m.Teams[0] + " - " + m.Teams[1]
}

// Resolved reports whether a result has been attached
func (m *Match) Resolved() bool {
	return m.Result != nil
}

// Describe renders the match with its result, e.g. "Arsenal 2 - 1 Chelsea (Moneyline)"
func (m *Match) Describe(kind BetKind) string {
	if m.Result == nil {
		return fmt.Sprintf("%s (%s)", m.Name(), kind)
	}
	return fmt.Sprintf("%s %d - %d %s (%s)", m.Teams[0], m.Result.Home, m.Result.Away, m.Teams[1], kind)
}

// Offer is a bettable event built from the odds feed
type Offer struct {
	Match     Match      `json:"match"`
	SourceKey string     `json:"source_key"`
	Odds      OddsConfig `json:"odds"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// State is everything the ledger persists between runs
type State struct {
	Balance     Money                  `json:"balance"`
	Matches     map[string]*Match      `json:"matches"`
	WagerGroups map[string]*WagerGroup `json:"wager_groups"`
	NextSeq     int64                  `json:"next_seq"`

	// Version counts stored commits. Zero means the state was never stored.
	Version int64 `json:"version"`
}

// NewState returns an empty state with the given opening balance
func NewState(balance Money) *State {
	return &State{
		Balance:     balance,
		Matches:     make(map[string]*Match),
		WagerGroups: make(map[string]*WagerGroup),
	}
}
