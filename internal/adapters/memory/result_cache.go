// Package memory holds in-process adapters: the search result cache and a
// saved-trip repository used when no database is configured.
package memory

import (
	"container/list"
	"sync"
	"time"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

const (
	DefaultTTL      = 60 * time.Second
	DefaultCapacity = 100
)

// ResultCache implements ports.ResultCache. Entries expire a fixed TTL after
// insertion and are evicted oldest-inserted first once capacity is reached.
// Reads never refresh an entry's position or expiry.
type ResultCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	order    *list.List // of *domain.CacheEntry, oldest at the front
	index    map[domain.RouteKey]*list.Element
}

type CacheOption func(*ResultCache)

func WithTTL(d time.Duration) CacheOption {
	return func(c *ResultCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithCapacity(n int) CacheOption {
	return func(c *ResultCache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewResultCache(opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[domain.RouteKey]*list.Element),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns a live entry for route. An expired entry is dropped and
// reported as absent.
func (c *ResultCache) Get(route domain.RouteKey) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[route]
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry := el.Value.(*domain.CacheEntry)
	if !c.now().Before(entry.ExpiresAt) {
		c.remove(el)
		return domain.CacheEntry{}, false
	}

	out := *entry
	out.Trips = copyTrips(entry.Trips)
	return out, true
}

// Put stores trips for route with a fresh expiry. Re-putting a route
// replaces its entry and moves it to the newest position.
func (c *ResultCache) Put(route domain.RouteKey, trips []domain.Trip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[route]; ok {
		c.remove(el)
	}

	now := c.now()
	for c.order.Len() >= c.capacity {
		c.evict(now)
	}

	entry := &domain.CacheEntry{
		Route:      route,
		Trips:      copyTrips(trips),
		InsertedAt: now,
		ExpiresAt:  now.Add(c.ttl),
	}
	c.index[route] = c.order.PushBack(entry)
}

// Len counts stored entries, including expired ones not yet dropped.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// evict drops every expired entry at the old end; if none were expired it
// drops the oldest live one.
func (c *ResultCache) evict(now time.Time) {
	dropped := false
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.Before(el.Value.(*domain.CacheEntry).ExpiresAt) {
			break
		}
		c.remove(el)
		dropped = true
		el = next
	}
	if !dropped {
		if front := c.order.Front(); front != nil {
			c.remove(front)
		}
	}
}

func (c *ResultCache) remove(el *list.Element) {
	entry := c.order.Remove(el).(*domain.CacheEntry)
	delete(c.index, entry.Route)
}

func copyTrips(trips []domain.Trip) []domain.Trip {
	if trips == nil {
		return []domain.Trip{}
	}
	out := make([]domain.Trip, len(trips))
	copy(out, trips)
	return out
}
