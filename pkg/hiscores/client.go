package hiscores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrPlayerNotFound indicates the hiscores have no entry for the requested
// player name.
var ErrPlayerNotFound = errors.New("player not found on hiscores")

// Client fetches player stats from the OSRS hiscores lite endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new hiscores client
func NewClient(userAgent string) *Client {
	return &Client{
		baseURL:    "https://secure.runescape.com/m=hiscore_oldschool",
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint,
// mainly for tests.
func NewClientWithBaseURL(baseURL, userAgent string) *Client {
	c := NewClient(userAgent)
	c.baseURL = baseURL
	return c
}

// Lookup fetches and parses the stats record for a player.
// Returns ErrPlayerNotFound when the hiscores have no such player.
func (c *Client) Lookup(ctx context.Context, player string) (*Stats, error) {
	endpoint := fmt.Sprintf("%s/index_lite.ws?player=%s", c.baseURL, url.QueryEscape(player))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching hiscores for %s: %w", player, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("looking up %s: %w", player, ErrPlayerNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hiscores returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading hiscores response: %w", err)
	}

	stats, err := ParseLite(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing hiscores for %s: %w", player, err)
	}
	stats.Player = player

	return stats, nil
}

// LookupOptional is Lookup for callers that can degrade to default levels:
// an unknown player yields (nil, nil) so gating is skipped and max hit
// assumes level 99. Transport and parse failures still error.
func (c *Client) LookupOptional(ctx context.Context, player string) (*Stats, error) {
	stats, err := c.Lookup(ctx, player)
	if errors.Is(err, ErrPlayerNotFound) {
		return nil, nil
	}
	return stats, err
}
