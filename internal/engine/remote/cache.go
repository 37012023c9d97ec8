// Package remote implements the generic query-result cache with
// online/offline awareness, stale fallback and pagination support.
package remote

import (
	"container/list"
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

// Endpoint prefixes selecting the base URL. Unprefixed endpoints resolve
// against the mobile base URL.
const (
	adminPrefix  = "admin:"
	mobilePrefix = "mobile:"
)

// DefaultPruneWindow is used by InvalidateOlderThan when the caller passes a
// non-positive interval.
const DefaultPruneWindow = 300 * time.Second

// Config carries the cache's construction parameters.
type Config struct {
	MobileBaseURL string
	AdminBaseURL  string
	Capacity      int
	LimitParam    string
	OffsetParam   string
	PageSize      int
}

// Stats is a snapshot of the cache's counters. Each logical load increments
// exactly one of Hits, Misses or StaleServes.
type Stats struct {
	Hits        uint64
	Misses      uint64
	StaleServes uint64
	Evictions   uint64
}

// Cache stores normalized JSON query results keyed by a digest of the
// endpoint and its sorted parameters.
//
// Entries have no read-side TTL: freshness is driven by explicit
// InvalidateOlderThan pruning and by the online/offline stale marking, not by
// passive timeout. The mutex is never held across a network call.
type Cache struct {
	client ports.NetworkClient
	clock  clockwork.Clock
	log    ports.Logger

	mobileBaseURL string
	adminBaseURL  string
	capacity      int
	limitParam    string
	offsetParam   string
	pageSize      int

	mutations ports.MutationHandler

	mu      sync.Mutex
	online  bool
	entries map[uint64]*entry
	lru     *list.List // front = most recently used; values are key digests

	stats Stats
}

type entry struct {
	canonical  string // full key; guards against digest collisions
	value      domain.Value
	storedAt   time.Time
	lastAccess time.Time
	slot       *list.Element
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects a clock.
func WithClock(c clockwork.Clock) Option {
	return func(d *Cache) { d.clock = c }
}

// WithLogger injects a logger.
func WithLogger(l ports.Logger) Option {
	return func(d *Cache) { d.log = l }
}

// WithMutationHandler injects the offline mutation handler.
func WithMutationHandler(h ports.MutationHandler) Option {
	return func(d *Cache) { d.mutations = h }
}

// New creates a data cache. The cache starts online.
func New(client ports.NetworkClient, cfg Config, opts ...Option) *Cache {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.LimitParam == "" {
		cfg.LimitParam = domain.DefaultLimitParam
	}
	if cfg.OffsetParam == "" {
		cfg.OffsetParam = domain.DefaultOffsetParam
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = domain.DefaultPageSize
	}

	c := &Cache{
		client:        client,
		clock:         clockwork.NewRealClock(),
		log:           ports.NopLogger{},
		mobileBaseURL: strings.TrimRight(cfg.MobileBaseURL, "/"),
		adminBaseURL:  strings.TrimRight(cfg.AdminBaseURL, "/"),
		capacity:      cfg.Capacity,
		limitParam:    cfg.LimitParam,
		offsetParam:   cfg.OffsetParam,
		pageSize:      cfg.PageSize,
		online:        true,
		entries:       make(map[uint64]*entry),
		lru:           list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnline flips the connectivity flag. Existing cache contents are
// untouched.
func (c *Cache) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = online
}

// LoadData returns the query result for endpoint+params. The boolean result
// reports staleness: true means the value was served from cache because the
// cache is offline or the fetch failed.
//
// Offline with no cached entry fails with domain.ErrNoConnectionNoCache; a
// failed fetch with no cached entry propagates the underlying failure.
func (c *Cache) LoadData(ctx context.Context, endpoint string, params map[string]string) (domain.Value, bool, error) {
	canonical := canonicalKey(endpoint, params)
	digest := xxhash.Sum64String(canonical)

	c.mu.Lock()
	online := c.online
	cached, hasCached := c.lookupLocked(digest, canonical)
	// Each logical load bumps exactly one counter. An online miss is counted
	// after the fetch settles, since a failed fetch may still end in a stale
	// serve.
	switch {
	case hasCached && online:
		c.stats.Hits++
	case hasCached:
		c.stats.StaleServes++
	case !online:
		c.stats.Misses++
	}
	c.mu.Unlock()

	if !online {
		if hasCached {
			return cached, true, nil
		}
		return domain.Value{}, false, zerr.With(domain.ErrNoConnectionNoCache, "endpoint", endpoint)
	}

	if hasCached {
		// Presence is freshness here; there is no read-side TTL.
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Cached()
		}
		return cached, false, nil
	}

	value, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		// A concurrent load may have filled the entry while the fetch was in
		// flight; serve that copy as stale rather than failing.
		c.mu.Lock()
		cached, hasCached = c.lookupLocked(digest, canonical)
		if hasCached {
			c.stats.StaleServes++
		} else {
			c.stats.Misses++
		}
		c.mu.Unlock()
		if hasCached {
			c.log.Warn("serving stale data after failed fetch", "key", canonical)
			return cached, true, nil
		}
		return domain.Value{}, false, err
	}

	c.mu.Lock()
	c.insertLocked(digest, canonical, value)
	c.stats.Misses++
	c.mu.Unlock()
	return value, false, nil
}

// LoadNextPage fetches the page at currentOffset directly from the network.
// Continuation pages are not cached: their keys would collide with the first
// page's and evict it.
func (c *Cache) LoadNextPage(ctx context.Context, endpoint string, currentOffset int) (domain.Value, error) {
	return c.fetch(ctx, endpoint, c.pageParams(currentOffset))
}

// LoadNextPageWithMeta is LoadNextPage plus extraction of the page's items,
// total count and continuation flag from well-known response keys.
func (c *Cache) LoadNextPageWithMeta(ctx context.Context, endpoint string, currentOffset int) (domain.Value, Page, error) {
	value, err := c.fetch(ctx, endpoint, c.pageParams(currentOffset))
	if err != nil {
		return domain.Value{}, Page{}, err
	}
	return value, ExtractPage(value, c.pageSize), nil
}

// EnqueueOfflineMutation forwards a write mutation to the injected handler.
// The cache does not persist mutations itself.
func (c *Cache) EnqueueOfflineMutation(ctx context.Context, endpoint, method string, body domain.Value) error {
	if c.mutations == nil {
		c.log.Warn("dropping offline mutation: no handler configured", "endpoint", endpoint)
		return nil
	}
	return c.mutations(ctx, ports.Mutation{Endpoint: endpoint, Method: method, Body: body})
}

// InvalidateOlderThan removes entries stored before now-interval and returns
// the count removed. A non-positive interval defaults to DefaultPruneWindow.
func (c *Cache) InvalidateOlderThan(interval time.Duration) int {
	if interval <= 0 {
		interval = DefaultPruneWindow
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.clock.Now().Add(-interval)
	removed := 0
	for digest, ent := range c.entries {
		if ent.storedAt.Before(cutoff) {
			c.lru.Remove(ent.slot)
			delete(c.entries, digest)
			removed++
		}
	}
	return removed
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*entry)
	c.lru.Init()
}

// Count returns the number of cached results.
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

func (c *Cache) pageParams(offset int) map[string]string {
	return map[string]string{
		c.limitParam:  strconv.Itoa(c.pageSize),
		c.offsetParam: strconv.Itoa(offset),
	}
}

// fetch performs the network request and normalizes the response shape.
func (c *Cache) fetch(ctx context.Context, endpoint string, params map[string]string) (domain.Value, error) {
	url, err := c.resolveURL(endpoint)
	if err != nil {
		return domain.Value{}, err
	}

	body, meta, err := c.client.RequestData(ctx, ports.Request{
		Method: http.MethodGet,
		URL:    url,
		Query:  params,
	})
	if err != nil {
		return domain.Value{}, zerr.With(errors.Join(domain.ErrNetworkFailure, err), "endpoint", endpoint)
	}
	if meta.StatusCode != http.StatusOK {
		return domain.Value{}, zerr.With(zerr.With(domain.ErrNetworkFailure, "endpoint", endpoint), "status", meta.StatusCode)
	}

	value, err := Normalize(body)
	if err != nil {
		return domain.Value{}, zerr.With(err, "endpoint", endpoint)
	}
	return value, nil
}

// Normalize decodes a response body, wrapping a top-level JSON array as
// {"items": [...]} so callers always receive an object shape.
func Normalize(body []byte) (domain.Value, error) {
	value, err := domain.ParseValue(body)
	if err != nil {
		return domain.Value{}, err
	}

	switch value.Kind() {
	case domain.KindObject:
		return value, nil
	case domain.KindArray:
		return domain.Object(map[string]domain.Value{"items": value}), nil
	default:
		return domain.Value{}, zerr.With(domain.ErrDecodingFailure, "kind", value.Kind().String())
	}
}

// resolveURL maps an optionally prefixed endpoint to a full URL.
func (c *Cache) resolveURL(endpoint string) (string, error) {
	base := c.mobileBaseURL
	path := endpoint

	switch {
	case strings.HasPrefix(endpoint, adminPrefix):
		base = c.adminBaseURL
		path = strings.TrimPrefix(endpoint, adminPrefix)
	case strings.HasPrefix(endpoint, mobilePrefix):
		path = strings.TrimPrefix(endpoint, mobilePrefix)
	}

	if base == "" {
		return "", zerr.With(zerr.New("no base URL configured"), "endpoint", endpoint)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path, nil
}

// lookupLocked returns the cached value and refreshes its recency. An entry
// whose canonical key differs from the caller's shares a digest by collision
// and is treated as a miss. Counters are the caller's responsibility.
func (c *Cache) lookupLocked(digest uint64, canonical string) (domain.Value, bool) {
	ent, ok := c.entries[digest]
	if !ok || ent.canonical != canonical {
		return domain.Value{}, false
	}
	ent.lastAccess = c.clock.Now()
	c.lru.MoveToFront(ent.slot)
	return ent.value, true
}

func (c *Cache) insertLocked(digest uint64, canonical string, value domain.Value) {
	now := c.clock.Now()

	if ent, ok := c.entries[digest]; ok {
		ent.canonical = canonical
		ent.value = value
		ent.storedAt = now
		ent.lastAccess = now
		c.lru.MoveToFront(ent.slot)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(uint64)
		if ent, ok := c.entries[victim]; ok {
			c.log.Debug("evicting data cache entry", "key", ent.canonical)
		}
		c.lru.Remove(oldest)
		delete(c.entries, victim)
		c.stats.Evictions++
	}

	ent := &entry{
		canonical:  canonical,
		value:      value,
		storedAt:   now,
		lastAccess: now,
	}
	ent.slot = c.lru.PushFront(digest)
	c.entries[digest] = ent
}

// canonicalKey builds the deterministic cache key: the endpoint followed by
// its parameters sorted lexicographically by name. Parameter insertion order
// never changes the key.
func canonicalKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}
