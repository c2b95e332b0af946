package ge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client handles API communication with the RuneScape Wiki price API
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new price API client.
// userAgent is required by the RuneScape Wiki API.
func NewClient(userAgent string) *Client {
	return &Client{
		baseURL:    "https://prices.runescape.wiki/api/v1/osrs",
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

// makeAPIRequest is the core HTTP request method
func (c *Client) makeAPIRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// User-Agent is required by the RuneScape Wiki API
	req.Header.Set("User-Agent", c.userAgent)

	if params != nil {
		q := req.URL.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return body, nil
}

// LatestPrices fetches the current order-book snapshot for all items,
// keyed by item ID.
func (c *Client) LatestPrices(ctx context.Context) (map[int]PriceQuote, error) {
	data, err := c.makeAPIRequest(ctx, "/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching latest prices: %w", err)
	}

	var response LatestPricesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("parsing latest prices response: %w", err)
	}

	return quotesByID(response.Data)
}

// ItemCatalog fetches item metadata (names, buy limits, alch values)
func (c *Client) ItemCatalog(ctx context.Context) ([]ItemMapping, error) {
	data, err := c.makeAPIRequest(ctx, "/mapping", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching item mapping: %w", err)
	}

	var mappings []ItemMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parsing item mapping response: %w", err)
	}

	return mappings, nil
}

// DayVolumes fetches 24h average prices and traded volumes for all items,
// keyed by item ID.
func (c *Client) DayVolumes(ctx context.Context) (map[int]VolumeSample, error) {
	data, err := c.makeAPIRequest(ctx, "/24h", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching 24h volumes: %w", err)
	}

	var response DayVolumesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("parsing 24h volumes response: %w", err)
	}

	volumes := make(map[int]VolumeSample, len(response.Data))
	for key, sample := range response.Data {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parsing item id %q in 24h response: %w", key, err)
		}
		volumes[id] = sample
	}

	return volumes, nil
}

func quotesByID(data map[string]PriceQuote) (map[int]PriceQuote, error) {
	quotes := make(map[int]PriceQuote, len(data))
	for key, quote := range data {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parsing item id %q in latest response: %w", key, err)
		}
		quotes[id] = quote
	}
	return quotes, nil
}
