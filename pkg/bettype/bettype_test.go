package bettype

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRef() EventRef {
	start := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	return EventRef{
		Key:    MatchKey(start, [2]string{"Arsenal", "Chelsea"}),
		Time:   start,
		Period: "Match",
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s got %s", want, got}, msgAndArgs...)...)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, 1, Category(3, 1))
	assert.Equal(t, 0, Category(1, 1))
	assert.Equal(t, -1, Category(0, 2))
}

func TestMoneyline_Settle(t *testing.T) {
	tests := []struct {
		name    string
		outcome models.Outcome
		result  models.Score
		want    string
	}{
		{name: "home wins", outcome: models.Home, result: models.Score{Home: 2, Away: 1}, want: "250"},
		{name: "home loses", outcome: models.Home, result: models.Score{Home: 0, Away: 2}, want: "0"},
		{name: "draw backed", outcome: models.Draw, result: models.Score{Home: 1, Away: 1}, want: "320"},
		{name: "home on draw is no push", outcome: models.Home, result: models.Score{Home: 1, Away: 1}, want: "0"},
		{name: "away wins", outcome: models.Away, result: models.Score{Home: 0, Away: 2}, want: "176.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyline(testRef(), []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
			require.NoError(t, err)
			require.NoError(t, m.PlaceWager(d("100"), tt.outcome))

			assertMoney(t, tt.want, m.Settle(tt.result))
		})
	}
}

func TestMoneyline_MultipleWagers(t *testing.T) {
	m, err := NewMoneyline(testRef(), []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
	require.NoError(t, err)
	require.NoError(t, m.PlaceWager(d("100"), models.Home))
	require.NoError(t, m.PlaceWager(d("40"), models.Draw))
	require.NoError(t, m.PlaceWager(d("60"), models.Home))

	assertMoney(t, "200", m.TotalStaked())
	assertMoney(t, "400", m.Settle(models.Score{Home: 1, Away: 0}))
	assertMoney(t, "128", m.Settle(models.Score{Home: 2, Away: 2}))
}

func TestMoneyline_InvalidInput(t *testing.T) {
	_, err := NewMoneyline(testRef(), []decimal.Decimal{d("2.5"), d("3.2")})
	assert.ErrorIs(t, err, ErrInvalidOdds)

	m, err := NewMoneyline(testRef(), []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
	require.NoError(t, err)

	assert.ErrorIs(t, m.PlaceWager(d("0"), models.Home), ErrInvalidStake)
	assert.ErrorIs(t, m.PlaceWager(d("-5"), models.Home), ErrInvalidStake)
	assert.ErrorIs(t, m.PlaceWager(d("10"), models.Outcome(2)), ErrInvalidOutcome)
	assert.Empty(t, m.Wagers())
	assert.True(t, m.TotalStaked().IsZero())
}

func TestSpread_QuarterLineSplit(t *testing.T) {
	s, err := NewSpread(testRef(), []models.SpreadLine{
		{Line: d("1.25"), Multiplier: d("1.91")},
		{Line: d("-1.25"), Multiplier: d("1.99")},
	})
	require.NoError(t, err)
	require.NoError(t, s.PlaceWager(d("100"), models.Home))

	expanded := s.Expanded()
	require.Len(t, expanded, 2)
	assertMoney(t, "50", expanded[0].Stake)
	assertMoney(t, "1.5", expanded[0].Line)
	assertMoney(t, "50", expanded[1].Stake)
	assertMoney(t, "1", expanded[1].Line)

	// 1-0 becomes 2.5-0 and 2.0-0, both home
	assertMoney(t, "191", s.Settle(models.Score{Home: 1, Away: 0}))
}

func TestSpread_Settle(t *testing.T) {
	lines := func(home, homeMult, away, awayMult string) []models.SpreadLine {
		return []models.SpreadLine{
			{Line: d(home), Multiplier: d(homeMult)},
			{Line: d(away), Multiplier: d(awayMult)},
		}
	}

	tests := []struct {
		name    string
		lines   []models.SpreadLine
		outcome models.Outcome
		result  models.Score
		want    string
	}{
		{name: "whole line push", lines: lines("-1", "1.9", "1", "1.95"), outcome: models.Home, result: models.Score{Home: 1, Away: 0}, want: "100"},
		{name: "whole line win", lines: lines("-1", "1.9", "1", "1.95"), outcome: models.Home, result: models.Score{Home: 3, Away: 1}, want: "190"},
		{name: "half line loss", lines: lines("-0.5", "1.9", "0.5", "2"), outcome: models.Home, result: models.Score{Home: 1, Away: 1}, want: "0"},
		{name: "away with handicap", lines: lines("-0.5", "1.9", "0.5", "2"), outcome: models.Away, result: models.Score{Home: 1, Away: 1}, want: "200"},
		{name: "quarter half win", lines: lines("-0.75", "1.9", "0.75", "2"), outcome: models.Home, result: models.Score{Home: 1, Away: 0}, want: "145"},
		{name: "quarter half loss", lines: lines("-0.75", "1.9", "0.75", "2"), outcome: models.Away, result: models.Score{Home: 1, Away: 0}, want: "50"},
		{name: "away push", lines: lines("1", "1.9", "-1", "1.95"), outcome: models.Away, result: models.Score{Home: 0, Away: 1}, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSpread(testRef(), tt.lines)
			require.NoError(t, err)
			require.NoError(t, s.PlaceWager(d("100"), tt.outcome))

			assertMoney(t, tt.want, s.Settle(tt.result))
		})
	}
}

func TestSpread_RejectsDrawOutcome(t *testing.T) {
	s, err := NewSpread(testRef(), []models.SpreadLine{{Line: d("0"), Multiplier: d("1.9")}, {Line: d("0"), Multiplier: d("1.9")}})
	require.NoError(t, err)

	assert.ErrorIs(t, s.PlaceWager(d("10"), models.Draw), ErrInvalidOutcome)

	_, err = NewSpread(testRef(), []models.SpreadLine{{Line: d("0"), Multiplier: d("1.9")}})
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

func TestTotalGoals_Settle(t *testing.T) {
	tests := []struct {
		name      string
		threshold string
		outcome   models.Outcome
		result    models.Score
		want      string
	}{
		{name: "push on exact total over", threshold: "3", outcome: models.Over, result: models.Score{Home: 2, Away: 1}, want: "100"},
		{name: "push on exact total under", threshold: "3", outcome: models.Under, result: models.Score{Home: 2, Away: 1}, want: "100"},
		{name: "over wins", threshold: "2.5", outcome: models.Over, result: models.Score{Home: 3, Away: 1}, want: "190"},
		{name: "under loses", threshold: "2.5", outcome: models.Under, result: models.Score{Home: 3, Away: 1}, want: "0"},
		{name: "under wins", threshold: "2.5", outcome: models.Under, result: models.Score{Home: 0, Away: 0}, want: "205"},
		{name: "quarter half push", threshold: "2.25", outcome: models.Over, result: models.Score{Home: 1, Away: 1}, want: "50"},
		{name: "quarter half win", threshold: "2.25", outcome: models.Under, result: models.Score{Home: 1, Away: 1}, want: "152.5"},
		{name: "quarter full win", threshold: "2.75", outcome: models.Over, result: models.Score{Home: 2, Away: 2}, want: "190"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg, err := NewTotalGoals(testRef(), &models.TotalLine{Threshold: d(tt.threshold), Over: d("1.9"), Under: d("2.05")})
			require.NoError(t, err)
			require.NoError(t, tg.PlaceWager(d("100"), tt.outcome))

			assertMoney(t, tt.want, tg.Settle(tt.result))
		})
	}
}

func TestTotalGoals_InvalidInput(t *testing.T) {
	_, err := NewTotalGoals(testRef(), nil)
	assert.ErrorIs(t, err, ErrInvalidOdds)

	tg, err := NewTotalGoals(testRef(), &models.TotalLine{Threshold: d("2.5"), Over: d("1.9"), Under: d("1.9")})
	require.NoError(t, err)
	assert.ErrorIs(t, tg.PlaceWager(d("10"), models.Draw), ErrInvalidOutcome)
}

func TestSplitQuarterLine(t *testing.T) {
	for _, line := range []string{"-2.75", "-1.25", "-0.75", "-0.25", "0.25", "0.75", "1.25", "2.75", "3.25"} {
		t.Run("odd "+line, func(t *testing.T) {
			got := SplitQuarterLine(d("30"), d(line), models.Home)

			require.Len(t, got, 2)
			assertMoney(t, "15", got[0].Stake)
			assertMoney(t, "15", got[1].Stake)
			assert.True(t, d(line).Add(d("0.25")).Equal(got[0].Line))
			assert.True(t, d(line).Sub(d("0.25")).Equal(got[1].Line))
		})
	}

	for _, line := range []string{"-1.5", "-1", "0", "0.5", "2", "2.5"} {
		t.Run("even "+line, func(t *testing.T) {
			got := SplitQuarterLine(d("30"), d(line), models.Away)

			require.Len(t, got, 1)
			assertMoney(t, "30", got[0].Stake)
			assert.True(t, d(line).Equal(got[0].Line))
		})
	}
}

// TestQuarterLine_InterpolatesAdjacentLines checks a quarter line pays the
// average of the two half-point lines around it for every score
func TestQuarterLine_InterpolatesAdjacentLines(t *testing.T) {
	total := func(threshold string, outcome models.Outcome) BetType {
		tg, err := NewTotalGoals(testRef(), &models.TotalLine{Threshold: d(threshold), Over: d("1.85"), Under: d("2.02")})
		require.NoError(t, err)
		require.NoError(t, tg.PlaceWager(d("100"), outcome))
		return tg
	}
	spread := func(line string, outcome models.Outcome) BetType {
		neg := d(line).Neg().String()
		s, err := NewSpread(testRef(), []models.SpreadLine{{Line: d(line), Multiplier: d("1.93")}, {Line: d(neg), Multiplier: d("1.97")}})
		require.NoError(t, err)
		require.NoError(t, s.PlaceWager(d("100"), outcome))
		return s
	}

	cases := []struct {
		name         string
		quarter      BetType
		upper, lower BetType
	}{
		{name: "total 2.25 over", quarter: total("2.25", models.Over), upper: total("2.5", models.Over), lower: total("2", models.Over)},
		{name: "total 2.75 under", quarter: total("2.75", models.Under), upper: total("3", models.Under), lower: total("2.5", models.Under)},
		{name: "spread +1.25 home", quarter: spread("1.25", models.Home), upper: spread("1.5", models.Home), lower: spread("1", models.Home)},
		{name: "spread -0.25 home", quarter: spread("-0.25", models.Home), upper: spread("0", models.Home), lower: spread("-0.5", models.Home)},
		// an away wager negates the away line, so the bounding lines swap sides
		{name: "spread -0.75 away", quarter: spread("0.75", models.Away), upper: spread("0.5", models.Away), lower: spread("1", models.Away)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for home := 0; home <= 5; home++ {
				for away := 0; away <= 5; away++ {
					score := models.Score{Home: home, Away: away}
					want := tc.upper.Settle(score).Add(tc.lower.Settle(score)).Div(two)
					assertMoney(t, want.String(), tc.quarter.Settle(score), "score %s", score)
				}
			}
			assert.True(t, tc.quarter.TotalStaked().Equal(sumExpanded(tc.quarter)))
		})
	}
}

func sumExpanded(bt BetType) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range bt.Expanded() {
		sum = sum.Add(e.Stake)
	}
	return sum
}

func TestKeys(t *testing.T) {
	start := time.Date(2024, 3, 9, 7, 5, 0, 0, time.UTC)

	assert.Equal(t, "202403090705", TimeKey(start))
	assert.Equal(t, "202403090705", TimeKey(start.In(time.FixedZone("CET", 3600))))

	key := MatchKey(start, [2]string{"Manchester United", "West Ham"})
	assert.True(t, strings.HasPrefix(key, "202403090705"))
	assert.Contains(t, key, "MU")
	assert.Contains(t, key, "WH")
	assert.Equal(t, key, MatchKey(start, [2]string{"Manchester United", "West Ham"}))
	assert.NotEqual(t, key, MatchKey(start, [2]string{"West Ham", "Manchester United"}))
}

// TestStableHash pins the algorithm so persisted keys survive upgrades
func TestStableHash(t *testing.T) {
	assert.Equal(t, uint64(0xef46db3751d8e999), StableHash(""))
	assert.Equal(t, StableHash("Arsenal"), StableHash("Arsenal"))
	assert.NotEqual(t, StableHash("Arsenal"), StableHash("arsenal"))
}

func TestBetTypeKeys(t *testing.T) {
	ref := testRef()
	m, err := NewMoneyline(ref, []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
	require.NoError(t, err)
	s, err := NewSpread(ref, []models.SpreadLine{{Line: d("1.25"), Multiplier: d("1.91")}, {Line: d("-1.25"), Multiplier: d("1.99")}})
	require.NoError(t, err)
	tg, err := NewTotalGoals(ref, &models.TotalLine{Threshold: d("2.5"), Over: d("1.9"), Under: d("1.95")})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(m.Key(), "M2.503.201.77"), m.Key())
	assert.True(t, strings.HasSuffix(s.Key(), "S51.91-51.99"), s.Key())
	assert.True(t, strings.HasSuffix(tg.Key(), "T101.90101.95"), tg.Key())

	other := EventRef{Key: MatchKey(ref.Time, [2]string{"Everton", "Fulham"}), Time: ref.Time}
	m2, err := NewMoneyline(other, []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
	require.NoError(t, err)
	assert.NotEqual(t, m.Key(), m2.Key())
}

func TestDetails(t *testing.T) {
	ref := testRef()
	m, _ := NewMoneyline(ref, []decimal.Decimal{d("2.5"), d("3.2"), d("1.769")})
	require.NoError(t, m.PlaceWager(d("10"), models.Away))
	s, _ := NewSpread(ref, []models.SpreadLine{{Line: d("1.25"), Multiplier: d("1.91")}, {Line: d("-1.25"), Multiplier: d("1.99")}})
	require.NoError(t, s.PlaceWager(d("20"), models.Home))
	require.NoError(t, s.PlaceWager(d("5"), models.Away))
	tg, _ := NewTotalGoals(ref, &models.TotalLine{Threshold: d("2.5"), Over: d("1.9"), Under: d("1.95")})
	require.NoError(t, tg.PlaceWager(d("30"), models.Under))

	assert.Equal(t, "Lose @ 1.769", m.Details()[0].Selection)
	assert.Equal(t, "Home (+1.25) Win @ 1.91", s.Details()[0].Selection)
	assert.Equal(t, "Away (-1.25) Win @ 1.99", s.Details()[1].Selection)
	assert.Equal(t, "Under 2.5 @ 1.95", tg.Details()[0].Selection)
	assertMoney(t, "20", s.Details()[0].Stake)
}

func TestFromRecord_RoundTrip(t *testing.T) {
	ref := testRef()
	s, err := NewSpread(ref, []models.SpreadLine{{Line: d("-0.75"), Multiplier: d("1.91")}, {Line: d("0.75"), Multiplier: d("1.99")}})
	require.NoError(t, err)
	require.NoError(t, s.PlaceWager(d("100"), models.Home))
	require.NoError(t, s.PlaceWager(d("25"), models.Away))

	rec := s.Record()
	assert.Equal(t, models.KindSpread, rec.Type)
	assert.Equal(t, ref.Key, rec.MatchKey)
	assert.Equal(t, s.Key(), rec.Key)
	require.Len(t, rec.Wagers, 2)

	rebuilt, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, s.Key(), rebuilt.Key())
	assert.Equal(t, s.Expanded(), rebuilt.Expanded())
	assert.True(t, s.TotalStaked().Equal(rebuilt.TotalStaked()))

	score := models.Score{Home: 2, Away: 1}
	assert.True(t, s.Settle(score).Equal(rebuilt.Settle(score)))
}

func TestFromRecord_Errors(t *testing.T) {
	_, err := FromRecord(models.WagerGroup{Key: "x", Type: "Parlay"})
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = FromRecord(models.WagerGroup{
		Key:    "y",
		Type:   models.KindMoneyline,
		Odds:   models.OddsConfig{Moneyline: []decimal.Decimal{d("2"), d("3"), d("4")}},
		Wagers: []models.Wager{{Stake: d("10"), Outcome: 5}},
	})
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestNew_AllKinds(t *testing.T) {
	odds := models.OddsConfig{
		Moneyline: []decimal.Decimal{d("2"), d("3"), d("4")},
		Spread:    []models.SpreadLine{{Line: d("0.5"), Multiplier: d("1.9")}, {Line: d("-0.5"), Multiplier: d("1.9")}},
		Total:     &models.TotalLine{Threshold: d("2.5"), Over: d("1.9"), Under: d("1.9")},
	}

	for _, kind := range Kinds() {
		bt, err := New(kind, testRef(), odds)
		require.NoError(t, err)
		assert.Equal(t, kind, bt.Kind())
		assert.Equal(t, testRef().Key, bt.MatchKey())
	}
}
