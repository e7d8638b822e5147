package demostats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pugstats/pugstats/pkg/match"
)

// DemoSource provides raw replay bytes for a finished match.
// *dathost.Client satisfies this.
type DemoSource interface {
	DemoFile(ctx context.Context, gameServerID, matchID string) (io.ReadCloser, error)
}

// Client streams a match replay from its DemoSource into the
// demo-statistics extraction service and decodes the per-player results.
// This is the one load-bearing external call in the pipeline: without it
// there is no scoreboard.
type Client struct {
	url        string
	username   string
	password   string
	demos      DemoSource
	httpClient *http.Client
}

func NewClient(url, username, password string, demos DemoSource) *Client {
	return &Client{
		url:      url,
		username: username,
		password: password,
		demos:    demos,
		httpClient: &http.Client{
			// the service parses the whole demo before responding
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *Client) DemoStats(ctx context.Context, gameServerID, matchID string) ([]Player, error) {
	demo, err := c.demos.DemoFile(ctx, gameServerID, matchID)
	if err != nil {
		return nil, err
	}
	defer demo.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, demo)
	if err != nil {
		return nil, match.ExternalServiceError{Service: "demo stats", Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, match.ExternalServiceError{Service: "demo stats", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, match.ExternalServiceError{
			Service: "demo stats",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, match.ExternalServiceError{Service: "demo stats", Err: err}
	}
	return stats.Players, nil
}
