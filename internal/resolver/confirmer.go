package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

// ConsoleConfirmer asks an operator on a terminal
type ConsoleConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleConfirmer reads answers from in and writes prompts to out
func NewConsoleConfirmer(in io.Reader, out io.Writer) *ConsoleConfirmer {
	return &ConsoleConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prompts until it gets a recognised answer
func (c *ConsoleConfirmer) Confirm(ctx context.Context, candidate service.Candidate) (service.Decision, error) {
	fmt.Fprintf(c.out, "\tMatching %q with %q (%d/%d, similarity %.2f)\n",
		candidate.Match.Name(),
		candidate.Fixture.HomeName+" - "+candidate.Fixture.AwayName,
		candidate.Rank, candidate.Of, candidate.Score)

	for {
		if err := ctx.Err(); err != nil {
			return service.Skip, err
		}
		fmt.Fprint(c.out, "\t\tAccept / Reject / Unmatchable / Skip: ")

		line, err := c.in.ReadString('\n')
		if d, ok := parseDecision(line); ok {
			return d, nil
		}
		if err != nil {
			if err == io.EOF {
				return service.Skip, fmt.Errorf("operator input closed: %w", err)
			}
			return service.Skip, err
		}
	}
}

func parseDecision(line string) (service.Decision, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return service.Reject, false
	}
	switch line[0] {
	case 'a', 'y':
		return service.Accept, true
	case 'r', 'n':
		return service.Reject, true
	case 'u':
		return service.Unmatchable, true
	case 's':
		return service.Skip, true
	}
	return service.Reject, false
}
