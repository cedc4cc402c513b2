// Package feed fetches finished fixtures from a football-data style API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
)

const (
	defaultBaseURL = "https://api.football-data.org/v1"
	defaultMaxDays = 99
)

// ClientConfig holds results API settings
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxDays    int
}

// ResultClient implements service.ResultFeed
type ResultClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxDays    int
	logger     zerolog.Logger
}

// NewResultClient creates a results API client
func NewResultClient(config ClientConfig, logger zerolog.Logger) *ResultClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxDays := config.MaxDays
	if maxDays <= 0 {
		maxDays = defaultMaxDays
	}

	return &ResultClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(config.Token),
		maxDays:    maxDays,
		logger:     logger.With().Str("component", "result_client").Logger(),
	}
}

type fixturesEnvelope struct {
	Fixtures []fixtureDTO `json:"fixtures"`
	Error    string       `json:"error"`
}

type linkDTO struct {
	Href string `json:"href"`
}

type fixtureDTO struct {
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	HomeTeamName string    `json:"homeTeamName"`
	AwayTeamName string    `json:"awayTeamName"`
	Links        struct {
		HomeTeam linkDTO `json:"homeTeam"`
		AwayTeam linkDTO `json:"awayTeam"`
	} `json:"_links"`
	Result struct {
		GoalsHomeTeam *int `json:"goalsHomeTeam"`
		GoalsAwayTeam *int `json:"goalsAwayTeam"`
	} `json:"result"`
}

// teamID is the last path segment of a team link
func teamID(href string) string {
	return href[strings.LastIndexByte(href, '/')+1:]
}

func (f fixtureDTO) toModel() models.Fixture {
	out := models.Fixture{
		HomeID:   teamID(f.Links.HomeTeam.Href),
		AwayID:   teamID(f.Links.AwayTeam.Href),
		HomeName: f.HomeTeamName,
		AwayName: f.AwayTeamName,
		Date:     f.Date.UTC(),
		Status:   f.Status,
	}
	if f.Result.GoalsHomeTeam != nil && f.Result.GoalsAwayTeam != nil {
		out.Score = &models.Score{Home: *f.Result.GoalsHomeTeam, Away: *f.Result.GoalsAwayTeam}
	}
	return out
}

// FetchFinished returns the finished fixtures of the past daysBack days and
// the next day. If either request fails nothing is returned.
func (c *ResultClient) FetchFinished(ctx context.Context, daysBack int) ([]models.Fixture, error) {
	if daysBack < 1 {
		daysBack = 1
	}
	if daysBack > c.maxDays {
		daysBack = c.maxDays
	}

	var all []fixtureDTO
	for _, frame := range []string{fmt.Sprintf("p%d", daysBack), "n1"} {
		batch, err := c.fetch(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("fetch fixtures timeFrame=%s: %w", frame, err)
		}
		all = append(all, batch...)
	}

	fixtures := make([]models.Fixture, 0, len(all))
	for _, dto := range all {
		f := dto.toModel()
		if !f.Finished() {
			continue
		}
		fixtures = append(fixtures, f)
	}

	c.logger.Info().
		Int("days_back", daysBack).
		Int("received", len(all)).
		Int("finished", len(fixtures)).
		Msg("fetched fixtures")
	return fixtures, nil
}

func (c *ResultClient) fetch(ctx context.Context, timeFrame string) ([]fixtureDTO, error) {
	q := url.Values{}
	q.Set("timeFrame", timeFrame)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fixtures?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}
	req.Header.Set("X-Response-Control", "minified")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env fixturesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if res.StatusCode >= 300 {
			return nil, fmt.Errorf("results api http %d", res.StatusCode)
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if res.StatusCode >= 300 || env.Error != "" {
		return nil, fmt.Errorf("results api http %d: %s", res.StatusCode, env.Error)
	}
	if env.Fixtures == nil {
		return nil, fmt.Errorf("results api response has no fixtures field")
	}
	return env.Fixtures, nil
}
