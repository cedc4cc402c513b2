package reconcile

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/wager-settlement-service/internal/metrics"
	"github.com/cypherlabdev/wager-settlement-service/internal/mocks"
	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/resolver"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
	"github.com/cypherlabdev/wager-settlement-service/internal/settlement"
	"github.com/cypherlabdev/wager-settlement-service/pkg/bettype"
)

type testReconcileSetup struct {
	store      *mocks.MockStore
	results    *mocks.MockResultFeed
	knowledge  *mocks.MockKnowledgeCache
	confirmer  *mocks.MockConfirmer
	ledger     *service.LedgerService
	out        *bytes.Buffer
	reconciler *Reconciler

	// number of log entries of each stored commit
	commits []int
}

func setupTestReconcile(t *testing.T) *testReconcileSetup {
	ctrl := gomock.NewController(t)
	s := &testReconcileSetup{
		store:     mocks.NewMockStore(ctrl),
		results:   mocks.NewMockResultFeed(ctrl),
		knowledge: mocks.NewMockKnowledgeCache(ctrl),
		confirmer: mocks.NewMockConfirmer(ctrl),
		out:       &bytes.Buffer{},
	}

	logger := zerolog.Nop()
	m := metrics.New(nil)
	s.ledger = service.NewLedgerService(models.NewState(decimal.NewFromInt(1000)), s.store,
		mocks.NewMockOfferCache(ctrl), settlement.NewRunner(m, logger), m, logger)
	res := resolver.New(resolver.Config{}, s.knowledge, s.confirmer, nil, m, logger)
	s.reconciler = New(s.ledger, s.results, res, 99, s.out, logger)

	s.store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, state *models.State, entries ...models.SettlementLog) error {
			state.Version++
			s.commits = append(s.commits, len(entries))
			return nil
		}).AnyTimes()
	return s
}

// kickoff is two days ago so the result window is three days
func kickoff() time.Time {
	return time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Minute)
}

func offerAt(start time.Time, home, away string) *models.Offer {
	teams := [2]string{home, away}
	return &models.Offer{
		Match: models.Match{Key: bettype.MatchKey(start, teams), Teams: teams, MatchTime: start},
		Odds: models.OddsConfig{
			Moneyline: []decimal.Decimal{
				decimal.RequireFromString("2.5"), decimal.RequireFromString("3.2"), decimal.RequireFromString("2.9"),
			},
			Total: &models.TotalLine{
				Threshold: decimal.RequireFromString("2.5"),
				Over:      decimal.RequireFromString("1.9"),
				Under:     decimal.RequireFromString("1.9"),
			},
		},
	}
}

// backHome places 100 on Arsenal while the match was still ahead
func (s *testReconcileSetup) backHome(t *testing.T, start time.Time) string {
	offer := offerAt(start, "Arsenal", "Chelsea")
	s.ledger.SetClock(func() time.Time { return start.Add(-time.Hour) })
	defer s.ledger.SetClock(func() time.Time { return time.Now().UTC() })

	_, err := s.ledger.PlaceOnOffer(context.Background(), offer, models.KindMoneyline, models.Home, decimal.NewFromInt(100))
	require.NoError(t, err)
	return offer.Match.Key
}

func reported(start time.Time) models.Fixture {
	return models.Fixture{
		HomeID: "57", AwayID: "61",
		HomeName: "Arsenal FC", AwayName: "Chelsea FC",
		Date:   start,
		Status: models.FixtureFinished,
		Score:  &models.Score{Home: 2, Away: 1},
	}
}

func TestRun_AcceptAndSettle(t *testing.T) {
	setup := setupTestReconcile(t)
	start := kickoff()
	setup.backHome(t, start)

	gomock.InOrder(
		setup.results.EXPECT().FetchFinished(gomock.Any(), 3).Return([]models.Fixture{reported(start)}, nil),
		setup.knowledge.EXPECT().Lookup(gomock.Any(), "57").Return(models.KnowledgeEntry{}, false, nil),
		setup.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(service.Accept, nil),
		setup.knowledge.EXPECT().Remember(gomock.Any(), map[string]models.KnowledgeEntry{
			"57": {ExternalName: "Arsenal FC", CanonicalName: "Arsenal"},
			"61": {ExternalName: "Chelsea FC", CanonicalName: "Chelsea"},
		}).Return(nil),
	)

	summary, err := setup.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Days)
	assert.Equal(t, 1, summary.Fixtures)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 0, summary.Open)
	assert.Equal(t, 1, summary.Settlement.Settled)
	assert.True(t, decimal.NewFromInt(1150).Equal(setup.ledger.Balance()))
	assert.Empty(t, setup.ledger.Matches())

	out := setup.out.String()
	assert.Contains(t, out, "Receives Arsenal 2-1 Chelsea")
	assert.Contains(t, out, "+150 Arsenal 2 - 1 Chelsea (Moneyline)")
	assert.Contains(t, out, "Current Balance: 1150")

	// placement, applied result, settlement with its history entry
	assert.Equal(t, []int{0, 0, 1}, setup.commits)
}

func TestRun_GroupPlacedDuringConfirmWaits(t *testing.T) {
	setup := setupTestReconcile(t)
	start := kickoff()
	setup.backHome(t, start)

	late := offerAt(time.Now().UTC().Add(2*time.Hour).Truncate(time.Minute), "Everton", "Fulham")
	var lateKey string

	setup.results.EXPECT().FetchFinished(gomock.Any(), 3).Return([]models.Fixture{reported(start)}, nil)
	setup.knowledge.EXPECT().Lookup(gomock.Any(), "57").Return(models.KnowledgeEntry{}, false, nil)
	setup.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ service.Candidate) (service.Decision, error) {
			group, err := setup.ledger.PlaceOnOffer(ctx, late, models.KindTotalGoals, models.Over, decimal.NewFromInt(50))
			require.NoError(t, err)
			lateKey = group.Key
			require.NoError(t, setup.ledger.ApplyResult(ctx, late.Match.Key, models.Score{Home: 3, Away: 0}))
			return service.Accept, nil
		})
	setup.knowledge.EXPECT().Remember(gomock.Any(), gomock.Len(2)).Return(nil)

	summary, err := setup.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Settlement.Settled)
	assert.True(t, decimal.NewFromInt(1100).Equal(setup.ledger.Balance()))

	pending := setup.ledger.PendingWagers()
	require.Len(t, pending, 1)
	assert.Equal(t, lateKey, pending[0].Key)
	assert.Equal(t, models.KindTotalGoals, pending[0].Type)
}

func TestRun_NothingOpen(t *testing.T) {
	setup := setupTestReconcile(t)

	summary, err := setup.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Days)
	assert.Contains(t, setup.out.String(), "No open matches.")
}

func TestRun_FetchFailureLeavesLedgerUntouched(t *testing.T) {
	setup := setupTestReconcile(t)
	setup.backHome(t, kickoff())
	setup.results.EXPECT().FetchFinished(gomock.Any(), gomock.Any()).Return(nil, errors.New("429 too many requests"))

	summary, err := setup.reconciler.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, decimal.NewFromInt(900).Equal(setup.ledger.Balance()))
	assert.Len(t, setup.ledger.PendingWagers(), 1)
}

func TestRun_NoFixtures(t *testing.T) {
	setup := setupTestReconcile(t)
	setup.backHome(t, kickoff())
	setup.results.EXPECT().FetchFinished(gomock.Any(), gomock.Any()).Return(nil, nil)

	summary, err := setup.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Fixtures)
	assert.Nil(t, summary.Settlement)
	assert.Contains(t, setup.out.String(), "No fixture data found...")
}

func TestRun_InterruptedOperatorSettlesNothing(t *testing.T) {
	setup := setupTestReconcile(t)
	start := kickoff()
	setup.backHome(t, start)

	setup.results.EXPECT().FetchFinished(gomock.Any(), gomock.Any()).Return([]models.Fixture{reported(start)}, nil)
	setup.knowledge.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(models.KnowledgeEntry{}, false, nil)
	setup.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(service.Reject, errors.New("operator input closed"))

	summary, err := setup.reconciler.Run(context.Background())

	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Applied)
	assert.Equal(t, 0, summary.Settlement.Settled)
	assert.True(t, decimal.NewFromInt(900).Equal(setup.ledger.Balance()))
	assert.Equal(t, []int{0}, setup.commits)
}

func TestRun_UnmatchableIsRecorded(t *testing.T) {
	setup := setupTestReconcile(t)
	start := kickoff()
	key := setup.backHome(t, start)

	setup.results.EXPECT().FetchFinished(gomock.Any(), gomock.Any()).Return([]models.Fixture{reported(start)}, nil)
	setup.knowledge.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(models.KnowledgeEntry{}, false, nil)
	setup.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(service.Unmatchable, nil)

	summary, err := setup.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)
	assert.Contains(t, setup.out.String(), "Unmatchable Arsenal - Chelsea")

	matches := setup.ledger.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, key, matches[0].Key)
	assert.True(t, matches[0].Unmatch)
	assert.Len(t, setup.ledger.PendingWagers(), 1)
	assert.Equal(t, []int{0, 0}, setup.commits)
}
