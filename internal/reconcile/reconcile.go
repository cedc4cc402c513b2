// Package reconcile runs one result pass: fetch finished fixtures, resolve
// them against the tracked matches and settle whatever became due.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/resolver"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
)

// Summary describes what one pass did
type Summary struct {
	Days       int // result window requested, 0 when nothing was open
	Fixtures   int
	Applied    int
	Open       int
	Settlement *settlement.Report
}

// Reconciler ties the result feed, the resolver and the ledger together
type Reconciler struct {
	ledger   *service.LedgerService
	results  service.ResultFeed
	resolver *resolver.Resolver
	maxDays  int
	out      io.Writer
	logger   zerolog.Logger
}

// New creates a reconciler. Progress lines for the operator go to out.
func New(
	ledger *service.LedgerService,
	results service.ResultFeed,
	res *resolver.Resolver,
	maxDays int,
	out io.Writer,
	logger zerolog.Logger,
) *Reconciler {
	if out == nil {
		out = io.Discard
	}
	return &Reconciler{
		ledger:   ledger,
		results:  results,
		resolver: res,
		maxDays:  maxDays,
		out:      out,
		logger:   logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run performs one pass. A failed fetch leaves the ledger untouched. When
// the operator step is interrupted the decisions already taken are applied
// and settled, and the interruption is returned alongside the summary.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Days: r.ledger.ResultWindow(r.maxDays)}
	if summary.Days == 0 {
		fmt.Fprintln(r.out, "No open matches.")
		return summary, nil
	}

	fmt.Fprintln(r.out, "Parsing fixtures...")
	fixtures, err := r.results.FetchFinished(ctx, summary.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	summary.Fixtures = len(fixtures)
	if len(fixtures) == 0 {
		fmt.Fprintln(r.out, "No fixture data found...")
		return summary, nil
	}

	snapshot := r.ledger.Snapshot()
	matches := make([]models.Match, 0, len(snapshot.Matches))
	for _, match := range snapshot.Matches {
		matches = append(matches, *match)
	}

	fmt.Fprintln(r.out, "Matching trail...")
	report, resolveErr := r.resolver.Resolve(ctx, matches, fixtures)
	if report == nil {
		return nil, fmt.Errorf("failed to resolve matches: %w", resolveErr)
	}
	if resolveErr != nil {
		r.logger.Warn().Err(resolveErr).Int("decided", len(report.Resolutions)).Msg("resolution interrupted")
	}

	// Persist even when ctx was canceled during the operator step
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if len(report.Resolutions) > 0 {
		if err := r.ledger.Update(saveCtx, func(state *models.State) error {
			summary.Applied = report.Apply(state)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	summary.Open = len(report.Open)
	r.printResolutions(report, snapshot)

	// Groups placed while the operator was answering wait for the next pass
	eligible := make(map[string]struct{}, len(snapshot.WagerGroups))
	for key := range snapshot.WagerGroups {
		eligible[key] = struct{}{}
	}
	summary.Settlement, err = r.ledger.SettleGroups(saveCtx, eligible)
	if err != nil {
		return nil, err
	}
	r.printSettlement(summary.Settlement)

	r.logger.Info().
		Int("days", summary.Days).
		Int("fixtures", summary.Fixtures).
		Int("applied", summary.Applied).
		Int("open", summary.Open).
		Int("settled", summary.Settlement.Settled).
		Msg("reconcile pass complete")

	return summary, resolveErr
}

func (r *Reconciler) printResolutions(report *resolver.Report, snapshot *models.State) {
	for _, res := range report.Resolutions {
		match, ok := snapshot.Matches[res.MatchKey]
		if !ok {
			continue
		}
		if res.Unmatch {
			fmt.Fprintf(r.out, "\tUnmatchable %s\n", match.Name())
			continue
		}
		fmt.Fprintf(r.out, "\tReceives %s %s %s\n", match.Teams[0], res.Result, match.Teams[1])
	}
}

func (r *Reconciler) printSettlement(report *settlement.Report) {
	for _, entry := range report.Logs {
		fmt.Fprintf(r.out, "%s %s %s\n", entry.Date.Format("2006-01-02"), signed(entry.Net()), entry.Match)
		for _, bet := range entry.Bets {
			fmt.Fprintf(r.out, "%8sbet %s on %s\n", " ", bet.Stake, bet.Selection)
		}
	}
	fmt.Fprintln(r.out, "Current Balance:", r.ledger.Balance())
}

func signed(net models.Money) string {
	if net.IsNegative() {
		return net.String()
	}
	return "+" + net.String()
}
