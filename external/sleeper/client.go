package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL  = "https://api.sleeper.app/v1"
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 4 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client reads league data from the Sleeper API. Requests are not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (c *Client) FetchMatchups(ctx context.Context, leagueID string, week int) ([]matchup.Participant, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", usecase.ErrInvalidInput)
	}
	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/league/%s/matchups/%d", url.PathEscape(leagueID), week)
	var items []matchupItem
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, crerr.Wrapf(err, "fetch matchups league_id=%s week=%d", leagueID, week)
	}

	out := make([]matchup.Participant, 0, len(items))
	for _, item := range items {
		out = append(out, item.toParticipant())
	}

	c.logger.DebugContext(ctx, "sleeper matchups fetched", "league_id", leagueID, "week", week, "count", len(out))
	return out, nil
}

func (c *Client) FetchRosters(ctx context.Context, leagueID string) ([]usecase.ExternalRoster, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/league/%s/rosters", url.PathEscape(leagueID))
	var items []rosterItem
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, crerr.Wrapf(err, "fetch rosters league_id=%s", leagueID)
	}

	out := make([]usecase.ExternalRoster, 0, len(items))
	for _, item := range items {
		out = append(out, item.toExternalRoster())
	}

	c.logger.DebugContext(ctx, "sleeper rosters fetched", "league_id", leagueID, "count", len(out))
	return out, nil
}

func (c *Client) FetchState(ctx context.Context) (usecase.ExternalState, error) {
	var state stateItem
	if err := c.doJSON(ctx, "/state/nfl", &state); err != nil {
		return usecase.ExternalState{}, crerr.Wrap(err, "fetch nfl state")
	}

	return usecase.ExternalState{
		Season:     state.Season,
		SeasonType: state.SeasonType,
		Week:       state.Week,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", err)
		return fmt.Errorf("%w: send request: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", usecase.ErrDependencyUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: provider status=%d path=%s", usecase.ErrNotFound, resp.StatusCode, path)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrDependencyUnavailable, resp.StatusCode, abbreviateBody(raw))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		text = text[:256] + "..."
	}
	return strconv.Quote(text)
}
