package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
	"github.com/cypherlabdev/wager-settlement-service/pkg/bettype"
)

// AdjustmentDescription labels manual balance changes in the history
const AdjustmentDescription = "Issue new money"

// maxCommitAttempts bounds reload and retry after ErrStaleState
const maxCommitAttempts = 3

var errNothingDue = errors.New("nothing to settle")

// LedgerService owns the balance, tracked matches and pending wager groups.
// It is built from persisted state at startup and every mutation goes
// through its methods. A mutation is applied to a copy of the state, stored
// with Store.Commit and only then made visible, so a failed write leaves
// both the store and memory as they were.
type LedgerService struct {
	mu        sync.Mutex
	state     *models.State
	store     Store
	offers    OfferCache
	runner    *settlement.Runner
	publisher SettlementPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLedgerService creates a ledger over an existing state
func NewLedgerService(
	state *models.State,
	store Store,
	offers OfferCache,
	runner *settlement.Runner,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerService {
	state = withMaps(state)
	m.SetBalance(state.Balance)

	return &LedgerService{
		state:   state,
		store:   store,
		offers:  offers,
		runner:  runner,
		metrics: m,
		logger:  logger.With().Str("component", "ledger_service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LoadLedgerService restores the ledger from the store, starting a fresh
// one with openingBalance when nothing was saved before
func LoadLedgerService(
	ctx context.Context,
	store Store,
	offers OfferCache,
	runner *settlement.Runner,
	openingBalance models.Money,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*LedgerService, error) {
	state, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	if state == nil {
		logger.Info().Str("balance", openingBalance.String()).Msg("no saved state, starting new ledger")
		state = models.NewState(openingBalance)
	}
	return NewLedgerService(state, store, offers, runner, m, logger), nil
}

// SetClock replaces the time source used for kick-off checks and history dates
func (s *LedgerService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPublisher enables publishing of settlement log entries
func (s *LedgerService) SetPublisher(p SettlementPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// Balance returns the current balance
func (s *LedgerService) Balance() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Balance
}

// PlaceWager looks up an offered event and places a wager on one of its markets
func (s *LedgerService) PlaceWager(
	ctx context.Context,
	league, matchKey string,
	kind models.BetKind,
	outcome models.Outcome,
	stake models.Money,
) (*models.WagerGroup, error) {
	offer, err := s.offers.Get(ctx, league, matchKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer %s/%s: %w", league, matchKey, err)
	}
	return s.PlaceOnOffer(ctx, offer, kind, outcome, stake)
}

// PlaceOnOffer debits the stake and appends the wager to the match's group
// for that bet type, tracking the match if it is new. Matches that have
// kicked off take no more wagers. Nothing changes when the wager is rejected
// or cannot be stored.
func (s *LedgerService) PlaceOnOffer(
	ctx context.Context,
	offer *models.Offer,
	kind models.BetKind,
	outcome models.Outcome,
	stake models.Money,
) (*models.WagerGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !stake.IsPositive() {
		return nil, &InvalidWagerError{Reason: fmt.Sprintf("stake %s is not positive", stake)}
	}

	var placed models.WagerGroup
	err := s.commit(ctx, func(state *models.State) ([]models.SettlementLog, error) {
		rec, err := s.place(state, offer, kind, outcome, stake)
		if err != nil {
			return nil, err
		}
		placed = rec
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.WagerPlaced(string(kind), stake)
	s.logger.Info().
		Str("match", offer.Match.Name()).
		Str("match_key", placed.MatchKey).
		Str("group_key", placed.Key).
		Str("type", string(kind)).
		Int("outcome", int(outcome)).
		Str("stake", stake.String()).
		Str("balance", s.state.Balance.String()).
		Msg("placed wager")

	return &placed, nil
}

func (s *LedgerService) place(
	state *models.State,
	offer *models.Offer,
	kind models.BetKind,
	outcome models.Outcome,
	stake models.Money,
) (models.WagerGroup, error) {
	if stake.GreaterThan(state.Balance) {
		return models.WagerGroup{}, &InvalidWagerError{Reason: fmt.Sprintf("stake %s exceeds balance %s", stake, state.Balance)}
	}

	match := state.Matches[offer.Match.Key]
	if match == nil {
		m := offer.Match
		m.Result = nil
		m.Unmatch = false
		match = &m
	}
	if match.Resolved() || match.Unmatch {
		return models.WagerGroup{}, &InvalidWagerError{Reason: "match is already closed"}
	}
	if !match.MatchTime.After(s.now()) {
		return models.WagerGroup{}, &InvalidWagerError{Reason: fmt.Sprintf("match started at %s", match.MatchTime.Format(time.RFC3339))}
	}

	bt, err := bettype.New(kind, bettype.RefFor(match), offer.Odds)
	if err != nil {
		if errors.Is(err, bettype.ErrUnknownKind) {
			return models.WagerGroup{}, &InvalidWagerError{Reason: "unknown bet type", Err: err}
		}
		return models.WagerGroup{}, fmt.Errorf("%w: %s on %s: %v", ErrMarketClosed, kind, match.Name(), err)
	}

	existing := state.WagerGroups[bt.Key()]
	if existing != nil {
		if existing.MatchKey != match.Key {
			return models.WagerGroup{}, fmt.Errorf("%w: %s", ErrKeyConflict, bt.Key())
		}
		if bt, err = bettype.FromRecord(*existing); err != nil {
			return models.WagerGroup{}, fmt.Errorf("failed to rebuild wager group: %w", err)
		}
	}

	if err := bt.PlaceWager(stake, outcome); err != nil {
		return models.WagerGroup{}, &InvalidWagerError{Reason: fmt.Sprintf("cannot back outcome %d on %s", outcome, kind), Err: err}
	}

	rec := bt.Record()
	if existing != nil {
		rec.Seq = existing.Seq
	} else {
		state.NextSeq++
		rec.Seq = state.NextSeq
	}

	state.Matches[match.Key] = match
	state.WagerGroups[rec.Key] = &rec
	state.Balance = state.Balance.Sub(stake)

	out := rec
	out.Wagers = append([]models.Wager(nil), rec.Wagers...)
	return out, nil
}

// AdjustBalance adds amount (negative to withdraw) and records it in the history
func (s *LedgerService) AdjustBalance(ctx context.Context, amount models.Money) (models.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance models.Money
	err := s.commit(ctx, func(state *models.State) ([]models.SettlementLog, error) {
		next := state.Balance.Add(amount)
		if next.IsNegative() {
			return nil, fmt.Errorf("adjustment of %s would make balance negative", amount)
		}
		state.Balance = next
		balance = next
		return []models.SettlementLog{{
			ID:            uuid.New(),
			Match:         AdjustmentDescription,
			Date:          s.now(),
			TotalSpent:    decimal.Zero,
			TotalReturned: amount,
			Bets:          []models.WagerDetail{},
			SettledAt:     s.now(),
		}}, nil
	})
	if err != nil {
		return s.state.Balance, err
	}

	s.logger.Info().Str("amount", amount.String()).Str("balance", balance.String()).Msg("adjusted balance")
	return balance, nil
}

// ParseScore reads a result written as "h-a" or "h:a"
func ParseScore(s string) (models.Score, error) {
	sep := "-"
	if !strings.Contains(s, sep) {
		sep = ":"
	}
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 2 {
		return models.Score{}, fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || home < 0 {
		return models.Score{}, fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || away < 0 {
		return models.Score{}, fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
	return models.Score{Home: home, Away: away}, nil
}

// ApplyResult sets the result of a tracked match by hand
func (s *LedgerService) ApplyResult(ctx context.Context, matchKey string, score models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if score.Home < 0 || score.Away < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidResult, score)
	}

	var name string
	err := s.commit(ctx, func(state *models.State) ([]models.SettlementLog, error) {
		m, ok := state.Matches[matchKey]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchKey)
		}
		result := score
		m.Result = &result
		m.Unmatch = false
		name = m.Name()
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("match", name).Str("result", score.String()).Msg("applied manual result")
	return nil
}

// Update runs fn with exclusive access to a copy of the state and stores
// the copy when fn succeeds. fn may run again on a reloaded state if another
// process stored the ledger in the meantime.
func (s *LedgerService) Update(ctx context.Context, fn func(state *models.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, func(state *models.State) ([]models.SettlementLog, error) {
		return nil, fn(state)
	})
}

// Settle runs a settlement pass over every due group
func (s *LedgerService) Settle(ctx context.Context) (*settlement.Report, error) {
	return s.SettleGroups(ctx, nil)
}

// SettleGroups settles the due groups named in eligible, or every due group
// when eligible is nil. The new state and its history entries are stored
// together before the settlement becomes visible.
func (s *LedgerService) SettleGroups(ctx context.Context, eligible map[string]struct{}) (*settlement.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report *settlement.Report
	err := s.commit(ctx, func(state *models.State) ([]models.SettlementLog, error) {
		r, err := s.runner.Run(ctx, state, eligible)
		if err != nil {
			return nil, err
		}
		report = r
		if r.Settled == 0 {
			return nil, errNothingDue
		}
		return r.Logs, nil
	})
	if errors.Is(err, errNothingDue) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	s.runner.Record(report)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report.Logs); err != nil {
			// the ledger is already consistent; downstream can catch up from history
			s.logger.Warn().Err(err).Int("count", len(report.Logs)).Msg("failed to publish settlements")
		}
	}
	return report, nil
}

// commit applies fn to a copy of the state and stores the copy together
// with the entries fn returns. The copy replaces the state only once the
// store accepted it. A stale copy is reloaded and fn runs again.
// Callers hold s.mu.
func (s *LedgerService) commit(ctx context.Context, fn func(state *models.State) ([]models.SettlementLog, error)) error {
	for attempt := 1; ; attempt++ {
		next := cloneState(s.state)
		entries, err := fn(next)
		if err != nil {
			return err
		}

		err = s.store.Commit(ctx, next, entries...)
		if err == nil {
			s.state = next
			s.metrics.SetBalance(next.Balance)
			return nil
		}
		if !errors.Is(err, ErrStaleState) || attempt == maxCommitAttempts {
			return fmt.Errorf("failed to commit ledger state: %w", err)
		}

		s.logger.Warn().Int("attempt", attempt).Int64("version", next.Version).Msg("ledger changed in the store, reloading")
		if err := s.reload(ctx); err != nil {
			return err
		}
	}
}

// reload replaces the state with the stored one. Callers hold s.mu.
func (s *LedgerService) reload(ctx context.Context) error {
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload ledger state: %w", err)
	}
	if state == nil {
		return fmt.Errorf("failed to reload ledger state: %w", ErrStaleState)
	}
	s.state = withMaps(state)
	s.metrics.SetBalance(s.state.Balance)
	return nil
}

// Refresh reloads the state from the store, picking up commits made by
// other processes
func (s *LedgerService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func withMaps(state *models.State) *models.State {
	if state.Matches == nil {
		state.Matches = make(map[string]*models.Match)
	}
	if state.WagerGroups == nil {
		state.WagerGroups = make(map[string]*models.WagerGroup)
	}
	return state
}

func cloneState(state *models.State) *models.State {
	out := models.NewState(state.Balance)
	out.NextSeq = state.NextSeq
	out.Version = state.Version
	for k, m := range state.Matches {
		c := *m
		if m.Result != nil {
			r := *m.Result
			c.Result = &r
		}
		out.Matches[k] = &c
	}
	for k, g := range state.WagerGroups {
		c := *g
		c.Wagers = append([]models.Wager(nil), g.Wagers...)
		out.WagerGroups[k] = &c
	}
	return out
}

// Snapshot returns a deep copy of the current state
func (s *LedgerService) Snapshot() *models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// PendingWagers returns copies of unsettled wager groups ordered by match time
func (s *LedgerService) PendingWagers() []models.WagerGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.WagerGroup, 0, len(s.state.WagerGroups))
	for _, g := range s.state.WagerGroups {
		c := *g
		c.Wagers = append([]models.Wager(nil), g.Wagers...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchTime.Equal(out[j].MatchTime) {
			return out[i].MatchTime.Before(out[j].MatchTime)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Matches returns copies of tracked matches ordered by start time then key
func (s *LedgerService) Matches() []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Match, 0, len(s.state.Matches))
	for _, m := range s.state.Matches {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchTime.Equal(out[j].MatchTime) {
			return out[i].MatchTime.Before(out[j].MatchTime)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// History returns the last limit settlement log entries
func (s *LedgerService) History(ctx context.Context, limit int) ([]models.SettlementLog, error) {
	if limit <= 0 {
		limit = 10
	}
	logs, err := s.store.RecentLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return logs, nil
}

// Offers lists the events open for betting in a league
func (s *LedgerService) Offers(ctx context.Context, league string) ([]*models.Offer, error) {
	offers, err := s.offers.GetByLeague(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	sort.Slice(offers, func(i, j int) bool {
		if !offers[i].Match.MatchTime.Equal(offers[j].Match.MatchTime) {
			return offers[i].Match.MatchTime.Before(offers[j].Match.MatchTime)
		}
		return offers[i].Match.Name() < offers[j].Match.Name()
	})
	return offers, nil
}

// Leagues lists leagues with open offers
func (s *LedgerService) Leagues(ctx context.Context) ([]string, error) {
	leagues, err := s.offers.Leagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	sort.Strings(leagues)
	return leagues, nil
}

// ResultWindow returns how many days back results must be fetched to cover
// the oldest open match, capped at maxDays. Zero means nothing is open.
func (s *LedgerService) ResultWindow(maxDays int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest time.Time
	for _, m := range s.state.Matches {
		if m.Resolved() || m.Unmatch {
			continue
		}
		if oldest.IsZero() || m.MatchTime.Before(oldest) {
			oldest = m.MatchTime
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return windowDays(s.now(), oldest, maxDays)
}

func windowDays(now, oldest time.Time, maxDays int) int {
	days := int(now.Sub(oldest).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if maxDays > 0 && days > maxDays {
		days = maxDays
	}
	return days
}
