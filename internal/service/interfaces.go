package service

import (
	"context"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_service.go -package=mocks github.com/cypherlabdev/wager-settlement-service/internal/service Store,KnowledgeCache,OfferCache,ResultFeed,Confirmer,SettlementPublisher

// Store persists ledger state and the settlement history
type Store interface {
	// LoadState returns nil and no error when nothing has been saved yet
	LoadState(ctx context.Context) (*models.State, error)
	// Commit stores state and appends entries in one step. It fails with
	// ErrStaleState when the stored version is not state.Version and writes
	// nothing. On success state.Version is advanced to the stored version.
	Commit(ctx context.Context, state *models.State, entries ...models.SettlementLog) error
	// RecentLogs returns up to limit entries, oldest first
	RecentLogs(ctx context.Context, limit int) ([]models.SettlementLog, error)
}

// KnowledgeCache maps external team ids to locally used team names.
// Entries are only written after an operator confirmed a match.
type KnowledgeCache interface {
	Lookup(ctx context.Context, externalID string) (models.KnowledgeEntry, bool, error)
	// Remember writes all entries, keyed by external id, or none of them
	Remember(ctx context.Context, entries map[string]models.KnowledgeEntry) error
}

// OfferCache holds the events currently open for betting
type OfferCache interface {
	Set(ctx context.Context, offer *models.Offer) error
	SetBatch(ctx context.Context, offers []*models.Offer) error
	Get(ctx context.Context, league, matchKey string) (*models.Offer, error)
	GetByLeague(ctx context.Context, league string) ([]*models.Offer, error)
	Leagues(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// ResultFeed fetches finished fixtures from the results source.
// Either the full record set is returned or an error, never a partial set.
type ResultFeed interface {
	FetchFinished(ctx context.Context, daysBack int) ([]models.Fixture, error)
}

// SettlementPublisher announces settled wager groups to other systems
type SettlementPublisher interface {
	Publish(ctx context.Context, entries []models.SettlementLog) error
}

// Decision is the operator's answer for a proposed match
type Decision int

const (
	Reject Decision = iota
	Accept
	Unmatchable
	// Skip leaves the match unresolved without looking at further candidates
	Skip
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Unmatchable:
		return "unmatchable"
	case Skip:
		return "skip"
	}
	return "reject"
}

// Candidate is a reported fixture proposed as the result of a tracked match
type Candidate struct {
	Match   *models.Match
	Fixture models.Fixture
	Score   float64 // product of home and away name similarity
	Rank    int     // 1-based position among the candidates for Match
	Of      int
}

// Confirmer asks an operator about one candidate at a time. The resolver
// waits for each answer before continuing.
type Confirmer interface {
	Confirm(ctx context.Context, candidate Candidate) (Decision, error)
}
