package facility

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mompick/backend/internal/detailcache"
	"github.com/mompick/backend/internal/logger"
	"go.uber.org/zap"
)

// Options control how a detail lookup degrades
type Options struct {
	// Silent suppresses the fabricated placeholder on failure; callers that
	// batch-prefetch details want a plain nil instead
	Silent bool

	// CacheOnly skips the upstream call entirely on a cache miss
	CacheOnly bool
}

// Fetcher resolves facility details cache-first, collapsing concurrent
// lookups for the same facility into one upstream call.
type Fetcher struct {
	client Client
	cache  *detailcache.Manager

	mu       sync.Mutex
	inFlight map[string]*call
}

type call struct {
	done    chan struct{}
	summary *DetailSummary
}

// NewFetcher creates a fetcher over the given upstream client and cache.
// cache may be nil, which disables caching entirely.
func NewFetcher(client Client, cache *detailcache.Manager) *Fetcher {
	return &Fetcher{
		client:   client,
		cache:    cache,
		inFlight: make(map[string]*call),
	}
}

// Detail returns the normalized detail for a facility, or nil when it cannot
// be resolved. Failures never return an error: non-silent lookups get a
// placeholder summary, silent lookups get nil.
func (f *Fetcher) Detail(ctx context.Context, facilityType, code, areaCode string, opts Options) *DetailSummary {
	key := facilityType + "/" + code

	f.mu.Lock()
	if c, ok := f.inFlight[key]; ok {
		f.mu.Unlock()
		select {
		case <-c.done:
			return c.summary
		case <-ctx.Done():
			return nil
		}
	}
	c := &call{done: make(chan struct{})}
	f.inFlight[key] = c
	f.mu.Unlock()

	c.summary = f.resolve(ctx, facilityType, code, areaCode, opts)

	f.mu.Lock()
	delete(f.inFlight, key)
	f.mu.Unlock()
	close(c.done)

	return c.summary
}

func (f *Fetcher) resolve(ctx context.Context, facilityType, code, areaCode string, opts Options) *DetailSummary {
	if f.cache != nil {
		if env := f.cache.Get(ctx, facilityType, code); env != nil {
			var s DetailSummary
			if err := json.Unmarshal(env.Data, &s); err == nil {
				return &s
			}
			logger.Warn("Cached facility detail corrupt, refetching",
				logger.WithFacility(facilityType, code))
		}
	}

	if opts.CacheOnly {
		return nil
	}

	raw, err := f.client.FetchDetail(ctx, facilityType, code, areaCode)
	if err != nil {
		if !opts.Silent {
			logger.Warn("Facility detail fetch failed",
				zap.Error(err), logger.WithFacility(facilityType, code))
			return Placeholder(code)
		}
		return nil
	}

	summary := Normalize(raw, code)

	if f.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			// Fire and forget so cache writes never delay the response
			go f.cache.Save(facilityType, code, payload)
		}
	}

	return summary
}
