package resolver

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

func testCandidate() service.Candidate {
	return service.Candidate{
		Match:   &models.Match{Teams: [2]string{"Arsenal", "Chelsea"}},
		Fixture: models.Fixture{HomeName: "Arsenal FC", AwayName: "Chelsea FC"},
		Score:   0.93,
		Rank:    1,
		Of:      2,
	}
}

func TestConsoleConfirmer_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  service.Decision
	}{
		{"a\n", service.Accept},
		{"Yes\n", service.Accept},
		{"r\n", service.Reject},
		{"no\n", service.Reject},
		{"U\n", service.Unmatchable},
		{"skip\n", service.Skip},
		{"\nwhat\naccept\n", service.Accept},
		{"u", service.Unmatchable},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsoleConfirmer(strings.NewReader(tt.input), &out)

			got, err := c.Confirm(context.Background(), testCandidate())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), `"Arsenal - Chelsea" with "Arsenal FC - Chelsea FC"`)
		})
	}
}

func TestConsoleConfirmer_EOF(t *testing.T) {
	c := NewConsoleConfirmer(strings.NewReader("maybe\n"), io.Discard)

	_, err := c.Confirm(context.Background(), testCandidate())
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsoleConfirmer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsoleConfirmer(strings.NewReader("a\n"), io.Discard)

	_, err := c.Confirm(ctx, testCandidate())
	assert.ErrorIs(t, err, context.Canceled)
}
