// Package bettype implements the wager structures that can be placed on a
// match and the rules that settle them against a final score.
package bettype

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

var (
	// ErrUnknownKind means a persisted wager group names no known bet type.
	// Callers must treat it as data corruption.
	ErrUnknownKind = errors.New("unknown bet type")

	ErrInvalidOutcome = errors.New("invalid outcome for bet type")
	ErrInvalidStake   = errors.New("stake must be positive")
	ErrInvalidOdds    = errors.New("invalid odds configuration")
)

// BetType is one market on one match together with the wagers placed on it
type BetType interface {
	Kind() models.BetKind
	// Key identifies the market on its match, stable across restarts
	Key() string
	MatchKey() string
	PlaceWager(stake models.Money, outcome models.Outcome) error
	// Settle returns the total amount returned, stakes included
	Settle(result models.Score) models.Money
	TotalStaked() models.Money
	Wagers() []models.Wager
	Expanded() []Elementary
	Details() []models.WagerDetail
	Record() models.WagerGroup
}

// EventRef is the part of a match a bet type needs to know about
type EventRef struct {
	Key    string
	Time   time.Time
	Period string
}

// RefFor builds the reference for a tracked match
func RefFor(m *models.Match) EventRef {
	return EventRef{Key: m.Key, Time: m.MatchTime, Period: m.Period}
}

type constructor func(EventRef, models.OddsConfig) (BetType, error)

var constructors = map[models.BetKind]constructor{
	models.KindMoneyline: func(ref EventRef, odds models.OddsConfig) (BetType, error) {
		return NewMoneyline(ref, odds.Moneyline)
	},
	models.KindSpread: func(ref EventRef, odds models.OddsConfig) (BetType, error) {
		return NewSpread(ref, odds.Spread)
	},
	models.KindTotalGoals: func(ref EventRef, odds models.OddsConfig) (BetType, error) {
		return NewTotalGoals(ref, odds.Total)
	},
}

// Kinds lists every supported bet type
func Kinds() []models.BetKind {
	return []models.BetKind{models.KindMoneyline, models.KindSpread, models.KindTotalGoals}
}

// New builds an empty bet type of the given kind from an event's odds
func New(kind models.BetKind, ref EventRef, odds models.OddsConfig) (BetType, error) {
	build, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return build(ref, odds)
}

// FromRecord rebuilds a bet type and replays its wagers from a persisted group
func FromRecord(rec models.WagerGroup) (BetType, error) {
	bt, err := New(rec.Type, EventRef{Key: rec.MatchKey, Time: rec.MatchTime, Period: rec.Period}, rec.Odds)
	if err != nil {
		return nil, fmt.Errorf("wager group %s: %w", rec.Key, err)
	}
	for i, w := range rec.Wagers {
		if err := bt.PlaceWager(w.Stake, w.Outcome); err != nil {
			return nil, fmt.Errorf("wager group %s: replay wager %d: %w", rec.Key, i, err)
		}
	}
	return bt, nil
}

// base carries what every bet type shares
type base struct {
	ledger
	ref EventRef
}

func (b *base) MatchKey() string {
	return b.ref.Key
}

func (b *base) record(kind models.BetKind, key string, odds models.OddsConfig) models.WagerGroup {
	return models.WagerGroup{
		Key:       key,
		Type:      kind,
		MatchKey:  b.ref.Key,
		MatchTime: b.ref.Time,
		Period:    b.ref.Period,
		Odds:      odds,
		Wagers:    b.Wagers(),
	}
}

func checkStake(stake models.Money) error {
	if !stake.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidStake, stake)
	}
	return nil
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.String()
	}
	return "+" + d.String()
}

// sideIndex maps +1 to the first configured side and -1 to the second
func sideIndex(outcome models.Outcome) int {
	if outcome > 0 {
		return 0
	}
	return 1
}
