package bettype

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

var moneylineLabels = [3]string{"Win", "Draw", "Lose"}

// Moneyline settles on the full-time result, draw included.
// Prices are ordered home, draw, away.
type Moneyline struct {
	base
	prices [3]decimal.Decimal
}

// NewMoneyline creates a moneyline market from three decimal prices
func NewMoneyline(ref EventRef, prices []decimal.Decimal) (*Moneyline, error) {
	if len(prices) != 3 {
		return nil, fmt.Errorf("%w: moneyline needs 3 prices, got %d", ErrInvalidOdds, len(prices))
	}
	m := &Moneyline{base: base{ref: ref}}
	copy(m.prices[:], prices)
	return m, nil
}

func (m *Moneyline) Kind() models.BetKind { return models.KindMoneyline }

func (m *Moneyline) Key() string {
	var b strings.Builder
	b.WriteString("M")
	for _, p := range m.prices {
		b.WriteString(p.StringFixed(2))
	}
	return groupKey(m.ref.Key, b.String())
}

func (m *Moneyline) PlaceWager(stake models.Money, outcome models.Outcome) error {
	if err := checkStake(stake); err != nil {
		return err
	}
	if outcome < models.Away || outcome > models.Home {
		return fmt.Errorf("%w: moneyline outcome %d", ErrInvalidOutcome, outcome)
	}
	m.add(models.Wager{Stake: stake, Outcome: outcome}, Elementary{Stake: stake, Outcome: outcome})
	return nil
}

// index of the price for an outcome: home 0, draw 1, away 2
func priceIndex(outcome models.Outcome) int {
	return 1 - int(outcome)
}

func (m *Moneyline) Settle(result models.Score) models.Money {
	actual := models.Outcome(Category(result.Home, result.Away))
	payout := decimal.Zero
	for _, e := range m.expanded {
		if e.Outcome == actual {
			payout = payout.Add(e.Stake.Mul(m.prices[priceIndex(actual)]))
		}
	}
	return payout
}

func (m *Moneyline) Details() []models.WagerDetail {
	out := make([]models.WagerDetail, 0, len(m.wagers))
	for _, w := range m.wagers {
		i := priceIndex(w.Outcome)
		out = append(out, models.WagerDetail{
			Stake:     w.Stake,
			Selection: fmt.Sprintf("%s @ %s", moneylineLabels[i], m.prices[i]),
		})
	}
	return out
}

func (m *Moneyline) Record() models.WagerGroup {
	return m.record(m.Kind(), m.Key(), models.OddsConfig{Moneyline: append([]decimal.Decimal(nil), m.prices[:]...)})
}
