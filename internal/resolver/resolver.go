package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/pkg/bettype"
	"github.com/cypherlabdev/wager-settlement-service/pkg/fingerprint"
)

// ErrNoCandidate marks a match for which no reported fixture shares its start time.
// It is recorded in the report, the match simply stays open.
var ErrNoCandidate = errors.New("no reported fixture at match time")

// Config holds resolver settings
type Config struct {
	MaxCandidates int
}

// Resolution is the decided fate of one tracked match
type Resolution struct {
	MatchKey string
	Result   *models.Score
	Unmatch  bool
	Direct   bool
}

// Report summarises one resolution pass
type Report struct {
	Resolutions []Resolution
	// Open maps matches left unresolved to the reason, ErrNoCandidate or nil
	// when every candidate was rejected or the operator skipped
	Open map[string]error
}

// Count returns how many resolutions satisfy pred
func (r *Report) Count(pred func(Resolution) bool) int {
	n := 0
	for _, res := range r.Resolutions {
		if pred(res) {
			n++
		}
	}
	return n
}

// Apply writes the resolutions into state. Matches that disappeared or were
// closed in the meantime are left alone.
func (r *Report) Apply(state *models.State) int {
	applied := 0
	for _, res := range r.Resolutions {
		m, ok := state.Matches[res.MatchKey]
		if !ok || m.Resolved() || m.Unmatch {
			continue
		}
		if res.Unmatch {
			m.Unmatch = true
		} else {
			score := *res.Result
			m.Result = &score
		}
		applied++
	}
	return applied
}

// Resolver maps reported fixtures onto tracked matches
type Resolver struct {
	config     Config
	knowledge  service.KnowledgeCache
	confirmer  service.Confirmer
	normalizer *fingerprint.Normalizer
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// New creates a resolver
func New(
	config Config,
	knowledge service.KnowledgeCache,
	confirmer service.Confirmer,
	normalizer *fingerprint.Normalizer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Resolver {
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 5
	}
	if normalizer == nil {
		normalizer = fingerprint.NewNormalizer(fingerprint.DefaultNoiseTokens)
	}
	return &Resolver{
		config:     config,
		knowledge:  knowledge,
		confirmer:  confirmer,
		normalizer: normalizer,
		metrics:    m,
		logger:     logger.With().Str("component", "resolver").Logger(),
	}
}

type reported struct {
	fixture  models.Fixture
	home     fingerprint.Vector
	away     fingerprint.Vector
	consumed bool
}

type tracked struct {
	match models.Match
	home  fingerprint.Vector
	away  fingerprint.Vector
}

func slot(t time.Time) int64 {
	return t.UTC().Truncate(time.Minute).Unix()
}

// Resolve decides results for the open matches among matches using the
// finished fixtures. It does not modify the matches; the caller applies the
// returned report. When the confirmer fails, the report holds the decisions
// made before the failure.
func (r *Resolver) Resolve(ctx context.Context, matches []models.Match, fixtures []models.Fixture) (*Report, error) {
	report := &Report{Open: make(map[string]error)}

	open := make(map[string]*tracked)
	for _, m := range matches {
		if m.Resolved() || m.Unmatch {
			continue
		}
		open[m.Key] = &tracked{match: m}
	}
	if len(open) == 0 {
		return report, nil
	}

	slots := make(map[int64][]*reported)
	for _, f := range fixtures {
		if !f.Finished() {
			continue
		}

		key, ok, err := r.directKey(ctx, f)
		if err != nil {
			return nil, err
		}
		if ok {
			if t, found := open[key]; found {
				score := *f.Score
				report.Resolutions = append(report.Resolutions, Resolution{MatchKey: key, Result: &score, Direct: true})
				delete(open, key)
				r.metrics.Resolution(metrics.ResolutionDirect)
				r.logger.Info().Str("match", t.match.Name()).Str("result", score.String()).Msg("resolved from knowledge cache")
				continue
			}
		}

		s := slot(f.Date)
		slots[s] = append(slots[s], &reported{
			fixture: f,
			home:    r.normalizer.Fingerprint(f.HomeName),
			away:    r.normalizer.Fingerprint(f.AwayName),
		})
	}

	pending := make([]*tracked, 0, len(open))
	for _, t := range open {
		t.home = r.normalizer.Fingerprint(t.match.Teams[0])
		t.away = r.normalizer.Fingerprint(t.match.Teams[1])
		pending = append(pending, t)
	}
	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i].match, pending[j].match
		if !a.MatchTime.Equal(b.MatchTime) {
			return a.MatchTime.Before(b.MatchTime)
		}
		return a.Key < b.Key
	})

	for _, t := range pending {
		candidates := r.rank(t, slots[slot(t.match.MatchTime)])
		if len(candidates) == 0 {
			report.Open[t.match.Key] = ErrNoCandidate
			r.metrics.Resolution(metrics.ResolutionNoCandidate)
			r.logger.Debug().Str("match", t.match.Name()).Msg("no candidate fixture")
			continue
		}

		res, err := r.review(ctx, t, candidates)
		if err != nil {
			return report, err
		}
		if res == nil {
			report.Open[t.match.Key] = nil
			continue
		}
		report.Resolutions = append(report.Resolutions, *res)
	}

	r.logger.Info().
		Int("resolved", len(report.Resolutions)).
		Int("open", len(report.Open)).
		Msg("resolution pass finished")
	return report, nil
}

// directKey builds the match key from the knowledge cache when both teams are known
func (r *Resolver) directKey(ctx context.Context, f models.Fixture) (string, bool, error) {
	home, ok, err := r.knowledge.Lookup(ctx, f.HomeID)
	if err != nil {
		return "", false, fmt.Errorf("knowledge lookup %s: %w", f.HomeID, err)
	}
	if !ok {
		return "", false, nil
	}
	away, ok, err := r.knowledge.Lookup(ctx, f.AwayID)
	if err != nil {
		return "", false, fmt.Errorf("knowledge lookup %s: %w", f.AwayID, err)
	}
	if !ok {
		return "", false, nil
	}
	return bettype.MatchKey(f.Date, [2]string{home.CanonicalName, away.CanonicalName}), true, nil
}

type scored struct {
	fx    *reported
	score float64
}

func (r *Resolver) rank(t *tracked, slotFixtures []*reported) []scored {
	var out []scored
	for _, fx := range slotFixtures {
		if fx.consumed {
			continue
		}
		s := fingerprint.Similarity(t.home, fx.home) * fingerprint.Similarity(t.away, fx.away)
		out = append(out, scored{fx: fx, score: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > r.config.MaxCandidates {
		out = out[:r.config.MaxCandidates]
	}
	return out
}

// review presents candidates one at a time until the operator decides
func (r *Resolver) review(ctx context.Context, t *tracked, candidates []scored) (*Resolution, error) {
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		match := t.match
		decision, err := r.confirmer.Confirm(ctx, service.Candidate{
			Match:   &match,
			Fixture: c.fx.fixture,
			Score:   c.score,
			Rank:    i + 1,
			Of:      len(candidates),
		})
		if err != nil {
			return nil, fmt.Errorf("confirm %s: %w", t.match.Name(), err)
		}

		log := r.logger.Info().
			Str("match", t.match.Name()).
			Str("fixture", c.fx.fixture.HomeName+" - "+c.fx.fixture.AwayName).
			Float64("score", c.score).
			Stringer("decision", decision)

		switch decision {
		case service.Accept:
			f := c.fx.fixture
			pair := map[string]models.KnowledgeEntry{
				f.HomeID: {ExternalName: f.HomeName, CanonicalName: t.match.Teams[0]},
				f.AwayID: {ExternalName: f.AwayName, CanonicalName: t.match.Teams[1]},
			}
			if err := r.knowledge.Remember(ctx, pair); err != nil {
				return nil, fmt.Errorf("remember %s and %s: %w", f.HomeID, f.AwayID, err)
			}
			c.fx.consumed = true
			score := *f.Score
			r.metrics.Resolution(metrics.ResolutionAccepted)
			log.Msg("candidate accepted")
			return &Resolution{MatchKey: t.match.Key, Result: &score}, nil
		case service.Unmatchable:
			r.metrics.Resolution(metrics.ResolutionUnmatchable)
			log.Msg("match declared unmatchable")
			return &Resolution{MatchKey: t.match.Key, Unmatch: true}, nil
		case service.Skip:
			log.Msg("match skipped")
			return nil, nil
		default:
			r.metrics.Resolution(metrics.ResolutionRejected)
			log.Msg("candidate rejected")
		}
	}
	return nil, nil
}
