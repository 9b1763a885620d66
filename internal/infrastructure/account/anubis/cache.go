package anubis

import (
	"sync"
	"time"

	"github.com/riskibarqy/battlecode-league/internal/domain/user"
)

type cacheEntry struct {
	principal user.Principal
	expiresAt time.Time
}

// principalCache is bounded so a flood of distinct tokens cannot grow it
// without limit. When full it drops expired entries first, then the entry
// closest to expiry.
type principalCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newInMemoryPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	return &principalCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return user.Principal{}, false
	}

	return entry.principal, true
}

// Set stores principal until the cache TTL elapses or tokenExpiry, whichever
// comes first. A zero tokenExpiry means the token did not report one.
func (c *principalCache) Set(key string, principal user.Principal, tokenExpiry time.Time) {
	if c.ttl <= 0 {
		return
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}
	if !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictExpired(now)
		if len(c.entries) >= c.maxEntries {
			c.evictSoonest()
		}
	}

	c.entries[key] = cacheEntry{
		principal: principal,
		expiresAt: expiresAt,
	}
}

func (c *principalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *principalCache) evictExpired(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, key)
		}
	}
}

func (c *principalCache) evictSoonest() {
	var (
		victim string
		oldest time.Time
	)
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(oldest) {
			victim = key
			oldest = entry.expiresAt
		}
	}
	delete(c.entries, victim)
}
