package bettype

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

// TotalGoals settles on combined goals against a threshold. Landing exactly
// on the threshold refunds the stake.
type TotalGoals struct {
	base
	line models.TotalLine
}

// NewTotalGoals creates an over/under market
func NewTotalGoals(ref EventRef, line *models.TotalLine) (*TotalGoals, error) {
	if line == nil {
		return nil, fmt.Errorf("%w: total goals line missing", ErrInvalidOdds)
	}
	return &TotalGoals{base: base{ref: ref}, line: *line}, nil
}

func (t *TotalGoals) Kind() models.BetKind { return models.KindTotalGoals }

func (t *TotalGoals) Key() string {
	var b strings.Builder
	b.WriteString("T")
	q := quarterUnits(t.line.Threshold)
	for _, m := range []decimal.Decimal{t.line.Over, t.line.Under} {
		fmt.Fprintf(&b, "%d%s", q, m.StringFixed(2))
	}
	return groupKey(t.ref.Key, b.String())
}

// PlaceWager backs over (+1) or under (-1)
func (t *TotalGoals) PlaceWager(stake models.Money, outcome models.Outcome) error {
	if err := checkStake(stake); err != nil {
		return err
	}
	if outcome != models.Over && outcome != models.Under {
		return fmt.Errorf("%w: total goals outcome %d", ErrInvalidOutcome, outcome)
	}
	t.add(models.Wager{Stake: stake, Outcome: outcome}, SplitQuarterLine(stake, t.line.Threshold, outcome)...)
	return nil
}

func (t *TotalGoals) multiplier(outcome models.Outcome) decimal.Decimal {
	if outcome == models.Over {
		return t.line.Over
	}
	return t.line.Under
}

func (t *TotalGoals) Settle(result models.Score) models.Money {
	goals := decimal.NewFromInt(int64(result.Home + result.Away))

	payout := decimal.Zero
	for _, e := range t.expanded {
		diff := goals.Sub(e.Line).Sign()
		switch {
		case diff == 0:
			payout = payout.Add(e.Stake)
		case diff*int(e.Outcome) > 0:
			payout = payout.Add(e.Stake.Mul(t.multiplier(e.Outcome)))
		}
	}
	return payout
}

func (t *TotalGoals) Details() []models.WagerDetail {
	out := make([]models.WagerDetail, 0, len(t.wagers))
	for _, w := range t.wagers {
		side := "Over"
		if w.Outcome == models.Under {
			side = "Under"
		}
		out = append(out, models.WagerDetail{
			Stake:     w.Stake,
			Selection: fmt.Sprintf("%s %s @ %s", side, t.line.Threshold, t.multiplier(w.Outcome)),
		})
	}
	return out
}

func (t *TotalGoals) Record() models.WagerGroup {
	line := t.line
	return t.record(t.Kind(), t.Key(), models.OddsConfig{Total: &line})
}
