package bettype

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

var spreadSides = [2]string{"Home", "Away"}

// Spread settles on the result after a goal handicap is applied to the
// backed side. An adjusted draw refunds the stake.
type Spread struct {
	base
	lines [2]models.SpreadLine // home, away
}

// NewSpread creates a handicap market from the home and away lines
func NewSpread(ref EventRef, lines []models.SpreadLine) (*Spread, error) {
	if len(lines) != 2 {
		return nil, fmt.Errorf("%w: spread needs 2 sides, got %d", ErrInvalidOdds, len(lines))
	}
	s := &Spread{base: base{ref: ref}}
	copy(s.lines[:], lines)
	return s, nil
}

func (s *Spread) Kind() models.BetKind { return models.KindSpread }

func (s *Spread) Key() string {
	var b strings.Builder
	b.WriteString("S")
	for _, l := range s.lines {
		fmt.Fprintf(&b, "%d%s", quarterUnits(l.Line), l.Multiplier.StringFixed(2))
	}
	return groupKey(s.ref.Key, b.String())
}

// PlaceWager backs home (+1) or away (-1). The side's line is turned into
// an adjustment of the home score before quarter-line expansion.
func (s *Spread) PlaceWager(stake models.Money, outcome models.Outcome) error {
	if err := checkStake(stake); err != nil {
		return err
	}
	if outcome != models.Home && outcome != models.Away {
		return fmt.Errorf("%w: spread outcome %d", ErrInvalidOutcome, outcome)
	}
	adjust := s.lines[sideIndex(outcome)].Line.Mul(decimal.NewFromInt(int64(outcome)))
	s.add(models.Wager{Stake: stake, Outcome: outcome}, SplitQuarterLine(stake, adjust, outcome)...)
	return nil
}

func (s *Spread) Settle(result models.Score) models.Money {
	home := decimal.NewFromInt(int64(result.Home))
	away := decimal.NewFromInt(int64(result.Away))

	payout := decimal.Zero
	for _, e := range s.expanded {
		adjusted := models.Outcome(home.Add(e.Line).Cmp(away))
		if adjusted == e.Outcome {
			payout = payout.Add(e.Stake.Mul(s.lines[sideIndex(e.Outcome)].Multiplier))
		}
		if adjusted == 0 {
			payout = payout.Add(e.Stake)
		}
	}
	return payout
}

func (s *Spread) Details() []models.WagerDetail {
	out := make([]models.WagerDetail, 0, len(s.wagers))
	for _, w := range s.wagers {
		i := sideIndex(w.Outcome)
		out = append(out, models.WagerDetail{
			Stake:     w.Stake,
			Selection: fmt.Sprintf("%s (%s) Win @ %s", spreadSides[i], signed(s.lines[i].Line), s.lines[i].Multiplier),
		})
	}
	return out
}

func (s *Spread) Record() models.WagerGroup {
	return s.record(s.Kind(), s.Key(), models.OddsConfig{Spread: append([]models.SpreadLine(nil), s.lines[:]...)})
}
