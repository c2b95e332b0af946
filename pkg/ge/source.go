package ge

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DataSource abstracts where market snapshots come from. The live client
// implements it directly; wrappers can add caching without callers knowing.
type DataSource interface {
	// ItemCatalog returns the static item metadata list.
	ItemCatalog(ctx context.Context) ([]ItemMapping, error)

	// LatestPrices returns the current order-book snapshot keyed by item ID.
	LatestPrices(ctx context.Context) (map[int]PriceQuote, error)

	// DayVolumes returns 24h average prices and volumes keyed by item ID.
	DayVolumes(ctx context.Context) (map[int]VolumeSample, error)
}

var _ DataSource = (*Client)(nil)

// CachedSource wraps a DataSource and memoizes the item catalog for the
// lifetime of the process. The catalog is effectively static, so one fetch
// is enough; a singleflight.Group collapses concurrent first calls into a
// single upstream request, with every waiter sharing that call's result.
// Prices and volumes are never cached.
type CachedSource struct {
	source DataSource

	mu      sync.RWMutex
	catalog []ItemMapping
	group   singleflight.Group
}

// NewCachedSource creates a caching wrapper around source.
func NewCachedSource(source DataSource) *CachedSource {
	return &CachedSource{source: source}
}

// ItemCatalog returns the cached catalog, fetching it once on first use.
// A failed fetch is not cached, so the next call retries.
func (s *CachedSource) ItemCatalog(ctx context.Context) ([]ItemMapping, error) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()
	if catalog != nil {
		return catalog, nil
	}

	v, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		fetched, err := s.source.ItemCatalog(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.catalog = fetched
		s.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ItemMapping), nil
}

// LatestPrices passes through to the underlying source.
func (s *CachedSource) LatestPrices(ctx context.Context) (map[int]PriceQuote, error) {
	return s.source.LatestPrices(ctx)
}

// DayVolumes passes through to the underlying source.
func (s *CachedSource) DayVolumes(ctx context.Context) (map[int]VolumeSample, error) {
	return s.source.DayVolumes(ctx)
}

var _ DataSource = (*CachedSource)(nil)
