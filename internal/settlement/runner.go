package settlement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/pkg/bettype"
)

// Runner settles wager groups whose match has a result
type Runner struct {
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// Report summarises one settlement pass
type Report struct {
	Settled       int
	TotalSpent    models.Money
	TotalReturned models.Money
	Logs          []models.SettlementLog
	PrunedMatches []string

	kinds   []string
	balance models.Money
}

// NewRunner creates a settlement runner
func NewRunner(m *metrics.Metrics, logger zerolog.Logger) *Runner {
	return &Runner{
		metrics: m,
		logger:  logger.With().Str("component", "settlement_runner").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type pending struct {
	group *models.WagerGroup
	match *models.Match
	bet   bettype.BetType
}

// Run settles every wager group of a resolved match in start time order,
// credits the balance and removes what was settled. Groups are rebuilt
// before anything is credited, so a corrupt group aborts the pass without
// changing state. Running it again on the same state does nothing.
//
// A non-nil eligible set limits the pass to the named group keys; groups
// outside it stay pending even when their match is resolved.
//
// Metrics are not emitted here. Callers record them with Record once the
// resulting state has been stored.
func (r *Runner) Run(ctx context.Context, state *models.State, eligible map[string]struct{}) (*Report, error) {
	report := &Report{TotalSpent: decimal.Zero, TotalReturned: decimal.Zero}

	var due []pending
	for _, g := range state.WagerGroups {
		if eligible != nil {
			if _, ok := eligible[g.Key]; !ok {
				continue
			}
		}
		m, ok := state.Matches[g.MatchKey]
		if !ok || !m.Resolved() {
			continue
		}
		due = append(due, pending{group: g, match: m})
	}
	if len(due) == 0 {
		return report, nil
	}

	sort.Slice(due, func(i, j int) bool {
		ti, tj := due[i].match.MatchTime, due[j].match.MatchTime
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return due[i].group.Seq < due[j].group.Seq
	})

	for i := range due {
		bt, err := bettype.FromRecord(*due[i].group)
		if err != nil {
			return nil, fmt.Errorf("settlement aborted: %w", err)
		}
		due[i].bet = bt
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settledMatches := make(map[string]struct{})
	for _, p := range due {
		payout := p.bet.Settle(*p.match.Result)
		state.Balance = state.Balance.Add(payout)

		entry := models.SettlementLog{
			ID:            uuid.New(),
			Match:         p.match.Describe(p.bet.Kind()),
			Date:          p.match.MatchTime,
			TotalSpent:    p.bet.TotalStaked(),
			TotalReturned: payout,
			Bets:          p.bet.Details(),
			SettledAt:     r.now(),
		}
		report.Logs = append(report.Logs, entry)
		report.Settled++
		report.TotalSpent = report.TotalSpent.Add(entry.TotalSpent)
		report.TotalReturned = report.TotalReturned.Add(payout)

		delete(state.WagerGroups, p.group.Key)
		settledMatches[p.match.Key] = struct{}{}

		report.kinds = append(report.kinds, string(p.bet.Kind()))
		r.logger.Info().
			Str("match_key", p.match.Key).
			Str("group_key", p.group.Key).
			Str("result", p.match.Result.String()).
			Str("spent", entry.TotalSpent.String()).
			Str("returned", payout.String()).
			Msg("settled wager group")
	}

	report.PrunedMatches = pruneMatches(state, settledMatches)
	report.balance = state.Balance

	r.logger.Info().
		Int("settled", report.Settled).
		Int("pruned_matches", len(report.PrunedMatches)).
		Str("returned", report.TotalReturned.String()).
		Str("balance", state.Balance.String()).
		Msg("settlement pass complete")

	return report, nil
}

// Record emits the settlement metrics of a stored pass
func (r *Runner) Record(report *Report) {
	if report == nil || report.Settled == 0 {
		return
	}
	for i, kind := range report.kinds {
		r.metrics.GroupSettled(kind, report.Logs[i].TotalReturned)
	}
	r.metrics.SetBalance(report.balance)
}

// pruneMatches drops settled matches no remaining wager group refers to
func pruneMatches(state *models.State, settled map[string]struct{}) []string {
	referenced := make(map[string]struct{}, len(state.WagerGroups))
	for _, g := range state.WagerGroups {
		referenced[g.MatchKey] = struct{}{}
	}

	var pruned []string
	for key := range settled {
		if _, ok := referenced[key]; ok {
			continue
		}
		delete(state.Matches, key)
		pruned = append(pruned, key)
	}
	sort.Strings(pruned)
	return pruned
}
