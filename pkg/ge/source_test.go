package ge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeSource counts upstream calls and can be told to fail.
type fakeSource struct {
	catalogCalls int32
	fail         bool
}

func (f *fakeSource) ItemCatalog(ctx context.Context) ([]ItemMapping, error) {
	atomic.AddInt32(&f.catalogCalls, 1)
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return []ItemMapping{{ID: 561, Name: "Nature rune"}}, nil
}

func (f *fakeSource) LatestPrices(ctx context.Context) (map[int]PriceQuote, error) {
	return map[int]PriceQuote{}, nil
}

func (f *fakeSource) DayVolumes(ctx context.Context) (map[int]VolumeSample, error) {
	return map[int]VolumeSample{}, nil
}

func TestCachedSourceFetchesCatalogOnce(t *testing.T) {
	upstream := &fakeSource{}
	source := NewCachedSource(upstream)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		catalog, err := source.ItemCatalog(ctx)
		if err != nil {
			t.Fatalf("ItemCatalog call %d: %v", i, err)
		}
		if len(catalog) != 1 || catalog[0].ID != 561 {
			t.Fatalf("unexpected catalog %+v", catalog)
		}
	}

	if calls := atomic.LoadInt32(&upstream.catalogCalls); calls != 1 {
		t.Errorf("upstream catalog calls = %d, want 1", calls)
	}
}

func TestCachedSourceCollapsesConcurrentFirstCalls(t *testing.T) {
	upstream := &fakeSource{}
	source := NewCachedSource(upstream)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := source.ItemCatalog(ctx); err != nil {
				t.Errorf("ItemCatalog: %v", err)
			}
		}()
	}
	wg.Wait()

	// Concurrent callers must share one in-flight fetch rather than
	// each issuing their own.
	if calls := atomic.LoadInt32(&upstream.catalogCalls); calls != 1 {
		t.Errorf("upstream catalog calls = %d, want 1", calls)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	upstream := &fakeSource{fail: true}
	source := NewCachedSource(upstream)
	ctx := context.Background()

	if _, err := source.ItemCatalog(ctx); err == nil {
		t.Fatal("expected error from failing upstream")
	}

	upstream.fail = false
	catalog, err := source.ItemCatalog(ctx)
	if err != nil {
		t.Fatalf("ItemCatalog after recovery: %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("unexpected catalog %+v", catalog)
	}

	if calls := atomic.LoadInt32(&upstream.catalogCalls); calls != 2 {
		t.Errorf("upstream catalog calls = %d, want 2", calls)
	}
}

func TestCachedSourcePassesThroughPrices(t *testing.T) {
	upstream := &fakeSource{}
	source := NewCachedSource(upstream)

	if _, err := source.LatestPrices(context.Background()); err != nil {
		t.Fatalf("LatestPrices: %v", err)
	}
	if _, err := source.DayVolumes(context.Background()); err != nil {
		t.Fatalf("DayVolumes: %v", err)
	}
}
