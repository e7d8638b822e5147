package dathost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pugstats/pugstats/pkg/match"
)

const DefaultBaseURL = "https://dathost.net/api/0.1"

// UnknownMap is substituted when the host doesn't report a current map.
// The map name is cosmetic, so an absent one is not an error.
const UnknownMap = "Unknown Map"

// Client talks to the game-server host's inventory and file APIs.
// Replay downloads run over a separate http.Client because demo
// transfers can take minutes while the inventory lookups should not.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	fileClient *http.Client
}

func NewClient(username, password string) *Client {
	return &Client{
		baseURL:  DefaultBaseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		fileClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL, username, password string) *Client {
	c := NewClient(username, password)
	c.baseURL = baseURL
	return c
}

type serverInfo struct {
	ID           string        `json:"id"`
	CSGOSettings *csgoSettings `json:"csgo_settings"`
}

type csgoSettings struct {
	MapgroupStartMap string `json:"mapgroup_start_map"`
}

// CurrentMap looks the game server up in the host's server list and
// returns the map it is configured to start on. A server or map that
// can't be found degrades to UnknownMap; only transport failures and
// non-2xx responses are errors.
func (c *Client) CurrentMap(ctx context.Context, gameServerID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/game-servers", nil)
	if err != nil {
		return "", match.ExternalServiceError{Service: "game server list", Err: err}
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", match.ExternalServiceError{Service: "game server list", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", match.ExternalServiceError{
			Service: "game server list",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var servers []serverInfo
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return "", match.ExternalServiceError{Service: "game server list", Err: err}
	}

	for _, s := range servers {
		if s.ID == gameServerID {
			if s.CSGOSettings != nil && s.CSGOSettings.MapgroupStartMap != "" {
				return s.CSGOSettings.MapgroupStartMap, nil
			}
			break
		}
	}
	return UnknownMap, nil
}

// DemoFile streams the raw replay for the given match off the game
// server. The caller owns the returned body.
func (c *Client) DemoFile(ctx context.Context, gameServerID, matchID string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/game-servers/%s/files/%s.dem", c.baseURL, gameServerID, matchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, match.ExternalServiceError{Service: "demo file", Err: err}
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.fileClient.Do(req)
	if err != nil {
		return nil, match.ExternalServiceError{Service: "demo file", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, match.ExternalServiceError{
			Service: "demo file",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return resp.Body, nil
}
