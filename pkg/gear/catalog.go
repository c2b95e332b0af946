package gear

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CatalogSource supplies the equippable item catalog
type CatalogSource interface {
	Equipment(ctx context.Context) ([]Item, error)
}

// Client fetches the equipment catalog over HTTP as a JSON array of items
type Client struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates an equipment catalog client for the given URL
func NewClient(url, userAgent string) *Client {
	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Equipment fetches and parses the catalog
func (c *Client) Equipment(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching equipment catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("equipment catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading equipment catalog: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing equipment catalog: %w", err)
	}

	return items, nil
}

var _ CatalogSource = (*Client)(nil)

// CachedCatalog memoizes the equipment catalog for the process lifetime,
// collapsing concurrent first fetches into one upstream call. Same
// contract as the item mapping cache: failures are not cached.
type CachedCatalog struct {
	source CatalogSource

	mu    sync.RWMutex
	items []Item
	group singleflight.Group
}

// NewCachedCatalog creates a caching wrapper around source
func NewCachedCatalog(source CatalogSource) *CachedCatalog {
	return &CachedCatalog{source: source}
}

// Equipment returns the cached catalog, fetching it once on first use
func (c *CachedCatalog) Equipment(ctx context.Context) ([]Item, error) {
	c.mu.RLock()
	items := c.items
	c.mu.RUnlock()
	if items != nil {
		return items, nil
	}

	v, err, _ := c.group.Do("equipment", func() (interface{}, error) {
		fetched, err := c.source.Equipment(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

var _ CatalogSource = (*CachedCatalog)(nil)
