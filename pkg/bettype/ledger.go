package bettype

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

var (
	two     = decimal.NewFromInt(2)
	four    = decimal.NewFromInt(4)
	quarter = decimal.RequireFromString("0.25")
)

// Elementary is a wager after quarter-line expansion, settled on its own line
type Elementary struct {
	Stake   models.Money
	Line    decimal.Decimal
	Outcome models.Outcome
}

// ledger holds the wagers shared by every bet type. wagers is what the user
// placed; expanded is what gets settled. Both always sum to total.
type ledger struct {
	wagers   []models.Wager
	expanded []Elementary
	total    models.Money
}

func (l *ledger) add(w models.Wager, expanded ...Elementary) {
	l.wagers = append(l.wagers, w)
	l.expanded = append(l.expanded, expanded...)
	l.total = l.total.Add(w.Stake)
}

// TotalStaked is the sum of every placed stake
func (l *ledger) TotalStaked() models.Money {
	return l.total
}

// Wagers returns a copy of the placed wagers in placement order
func (l *ledger) Wagers() []models.Wager {
	out := make([]models.Wager, len(l.wagers))
	copy(out, l.wagers)
	return out
}

// Expanded returns a copy of the settlement-level wagers
func (l *ledger) Expanded() []Elementary {
	out := make([]Elementary, len(l.expanded))
	copy(out, l.expanded)
	return out
}

// SplitQuarterLine expands a wager on line. When the line in quarter-goal
// units is odd it becomes two half stakes on line+0.25 and line-0.25.
func SplitQuarterLine(stake models.Money, line decimal.Decimal, outcome models.Outcome) []Elementary {
	if quarterUnits(line)%2 == 0 {
		return []Elementary{{Stake: stake, Line: line, Outcome: outcome}}
	}
	half := stake.Div(two)
	return []Elementary{
		{Stake: half, Line: line.Add(quarter), Outcome: outcome},
		{Stake: half, Line: line.Sub(quarter), Outcome: outcome},
	}
}

// Category is +1 for a home win, -1 for an away win and 0 for a draw
func Category(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	}
	return 0
}

func quarterUnits(line decimal.Decimal) int64 {
	return line.Mul(four).IntPart()
}
