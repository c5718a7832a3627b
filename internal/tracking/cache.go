package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/jeni-t/flightbooking/internal/domain"
)

// FetchFunc retrieves the current status of one flight. Implementations never
// fail; upstream problems come back as a record with StatusUnknown.
type FetchFunc func(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord

type cacheEntry struct {
	record   domain.FlightStatusRecord
	expireAt time.Time
}

// StatusCache memoizes status lookups for a short window so bursts of requests
// around a poll tick do not fan out to the upstream API. Unknown results are
// cached as well, bounding the rate of repeated failing calls.
type StatusCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func NewStatusCache(ttl time.Duration) *StatusCache {
	return &StatusCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// GetOrFetch returns a live cached record, or invokes fetch and caches the
// result with a fresh expiry. Expired entries are evicted on lookup.
func (c *StatusCache) GetOrFetch(ctx context.Context, flightNumber, date string, fetch FetchFunc) domain.FlightStatusRecord {
	key := cacheKey(flightNumber, date)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if time.Now().Before(entry.expireAt) {
			c.mu.Unlock()
			return entry.record
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	record := fetch(ctx, flightNumber, date)

	c.mu.Lock()
	c.entries[key] = cacheEntry{record: record, expireAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return record
}

// Len reports the number of entries currently held, expired or not.
func (c *StatusCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(flightNumber, date string) string {
	return flightNumber + "-" + date
}
