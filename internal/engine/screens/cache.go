// Package screens implements the screen-definition cache with pattern-aware
// TTLs, ETag-based conditional revalidation and sync-bundle seeding.
package screens

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	screenPathPrefix  = "/v1/screens/"
	versionPathPrefix = "/v1/screen-config/version/"
	platformParam     = "ios"
)

// Stats is a snapshot of the cache's counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	StaleServes   uint64
	Revalidations uint64 // 304 responses that extended an entry's life
	Evictions     uint64
}

// Cache stores parsed screen definitions keyed by screen key.
//
// The mutex is never held across a network call: a load computes what it
// needs under the lock, fetches outside it, then re-enters briefly to commit.
// Concurrent misses for the same key may therefore each issue a fetch.
type Cache struct {
	client  ports.NetworkClient
	clock   clockwork.Clock
	log     ports.Logger
	baseURL string

	capacity   int
	defaultTTL time.Duration // zero disables caching for every pattern

	mu             sync.Mutex
	entries        map[string]*entry
	lru            *list.List // front = most recently used; values are screen keys
	bundleVersions map[string]string

	stats Stats
}

type entry struct {
	screen     domain.Screen
	expiresAt  time.Time
	lastAccess time.Time
	slot       *list.Element
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects a clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Cache) { s.clock = c }
}

// WithLogger injects a logger.
func WithLogger(l ports.Logger) Option {
	return func(s *Cache) { s.log = l }
}

// New creates a screen cache. baseURL is the screen service root without a
// trailing slash. defaultTTL zero turns the cache into a pass-through.
func New(client ports.NetworkClient, baseURL string, capacity int, defaultTTL time.Duration, opts ...Option) *Cache {
	if capacity < 1 {
		capacity = 1
	}

	c := &Cache{
		client:         client,
		clock:          clockwork.NewRealClock(),
		log:            ports.NopLogger{},
		baseURL:        baseURL,
		capacity:       capacity,
		defaultTTL:     defaultTTL,
		entries:        make(map[string]*entry),
		lru:            list.New(),
		bundleVersions: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadScreen returns the screen for the given key, serving from cache when a
// fresh entry exists, revalidating with If-None-Match when the server holds
// an ETag, and falling back to a stale entry when the fetch fails.
func (c *Cache) LoadScreen(ctx context.Context, key string) (domain.Screen, error) {
	c.mu.Lock()
	now := c.clock.Now()
	var (
		stale    domain.Screen
		hasStale bool
		etag     string
	)
	if ent, ok := c.entries[key]; ok {
		if !now.After(ent.expiresAt) {
			ent.lastAccess = now
			c.lru.MoveToFront(ent.slot)
			c.stats.Hits++
			screen := ent.screen
			c.mu.Unlock()
			if v, ok := ports.VertexFromContext(ctx); ok {
				v.Cached()
			}
			return screen, nil
		}
		stale, hasStale = ent.screen, true
		etag = ent.screen.ETag
	}
	c.stats.Misses++
	c.mu.Unlock()

	req := ports.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + screenPathPrefix + key,
		Query:  map[string]string{"platform": platformParam},
	}
	if etag != "" {
		req.Headers = map[string]string{"If-None-Match": etag}
	}

	body, meta, err := c.client.RequestData(ctx, req)
	if err != nil {
		return c.fallback(key, stale, hasStale, zerr.With(errors.Join(domain.ErrNetworkFailure, err), "screen_key", key))
	}

	switch meta.StatusCode {
	case http.StatusNotModified:
		return c.commitRevalidated(key, stale, hasStale)
	case http.StatusOK:
		screen, decodeErr := decodeScreen(body, key, meta.Header("ETag"))
		if decodeErr != nil {
			return c.fallback(key, stale, hasStale, decodeErr)
		}
		c.commitFetched(key, screen)
		return screen, nil
	default:
		err := zerr.With(zerr.With(domain.ErrNetworkFailure, "screen_key", key), "status", meta.StatusCode)
		return c.fallback(key, stale, hasStale, err)
	}
}

// fallback serves a stale entry when one exists, otherwise propagates err.
func (c *Cache) fallback(key string, stale domain.Screen, hasStale bool, err error) (domain.Screen, error) {
	if !hasStale {
		return domain.Screen{}, err
	}

	c.mu.Lock()
	c.stats.StaleServes++
	if ent, ok := c.entries[key]; ok {
		ent.lastAccess = c.clock.Now()
		c.lru.MoveToFront(ent.slot)
	}
	c.mu.Unlock()

	c.log.Warn("serving stale screen after failed refresh", "screen_key", key)
	return stale, nil
}

// commitRevalidated handles a 304: the cached value is unchanged, only its
// expiry is extended using the pattern's TTL.
func (c *Cache) commitRevalidated(key string, stale domain.Screen, hasStale bool) (domain.Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if ent, ok := c.entries[key]; ok {
		ent.expiresAt = now.Add(PatternTTL(ent.screen.Pattern, c.defaultTTL))
		ent.lastAccess = now
		c.lru.MoveToFront(ent.slot)
		c.stats.Revalidations++
		return ent.screen, nil
	}

	// The entry was invalidated while the request was in flight. The server
	// confirmed our captured copy is still current, so reinsert it.
	if hasStale {
		c.insertLocked(key, stale, PatternTTL(stale.Pattern, c.defaultTTL))
		c.stats.Revalidations++
		return stale, nil
	}

	return domain.Screen{}, zerr.With(zerr.With(domain.ErrNetworkFailure, "screen_key", key), "status", http.StatusNotModified)
}

func (c *Cache) commitFetched(key string, screen domain.Screen) {
	ttl := PatternTTL(screen.Pattern, c.defaultTTL)
	if ttl == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(key, screen, ttl)
	// An individually fetched screen supersedes its bundle provenance.
	delete(c.bundleVersions, key)
}

// insertLocked writes the entry, evicting the least-recently-used entries
// when at capacity. The incoming key is never the victim.
func (c *Cache) insertLocked(key string, screen domain.Screen, ttl time.Duration) {
	now := c.clock.Now()

	if ent, ok := c.entries[key]; ok {
		ent.screen = screen
		ent.expiresAt = now.Add(ttl)
		ent.lastAccess = now
		c.lru.MoveToFront(ent.slot)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(string)
		c.lru.Remove(oldest)
		delete(c.entries, victim)
		c.stats.Evictions++
	}

	ent := &entry{
		screen:     screen,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
	ent.slot = c.lru.PushFront(key)
	c.entries[key] = ent
}

// CheckVersion performs the lightweight version probe for a bundle-seeded
// screen. It returns true when the server reports a different version, in
// which case the cached entry is invalidated. Network and decode failures
// are swallowed: this is a best-effort path.
func (c *Cache) CheckVersion(ctx context.Context, key string) bool {
	c.mu.Lock()
	recorded, ok := c.bundleVersions[key]
	c.mu.Unlock()
	if !ok {
		return false
	}

	body, meta, err := c.client.RequestData(ctx, ports.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + versionPathPrefix + key,
	})
	if err != nil || meta.StatusCode != http.StatusOK {
		c.log.Debug("screen version check failed", "screen_key", key)
		return false
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.log.Debug("screen version check returned malformed body", "screen_key", key)
		return false
	}

	if payload.Version == recorded {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.entries[key]; ok {
		c.lru.Remove(ent.slot)
		delete(c.entries, key)
	}
	delete(c.bundleVersions, key)
	return true
}

// Invalidate removes the entry for the given key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.lru.Remove(ent.slot)
		delete(c.entries, key)
	}
	delete(c.bundleVersions, key)
}

// Clear removes every entry and all recorded bundle versions.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.bundleVersions = make(map[string]string)
	c.lru.Init()
}

// Count returns the number of cached screens.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func decodeScreen(body []byte, key, etag string) (domain.Screen, error) {
	var screen domain.Screen
	if err := json.Unmarshal(body, &screen); err != nil {
		return domain.Screen{}, zerr.With(errors.Join(domain.ErrDecodingFailure, err), "screen_key", key)
	}
	if screen.Key == "" {
		screen.Key = key
	}
	screen.ETag = etag
	return screen, nil
}
