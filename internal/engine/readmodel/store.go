// Package readmodel implements a generic TTL+LRU cache for read-model
// projections, with tag-based bulk invalidation and hit/miss metrics.
package readmodel

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// Store caches values keyed by their own ID. All state is guarded by one
// mutex; every public operation is a single critical section, so callers
// observe a total order of reads and writes per instance.
type Store[T domain.ReadModel] struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	log        ports.Logger
	capacity   int
	defaultTTL time.Duration

	entries map[string]*entry[T]
	lru     *list.List // front = most recently used; values are entry ids
	tags    map[string]map[string]struct{}

	metrics Metrics
}

type entry[T domain.ReadModel] struct {
	cache   domain.CacheEntry[T]
	tags    []string
	lruSlot *list.Element
}

// Option configures a Store.
type Option[T domain.ReadModel] func(*Store[T])

// WithClock injects a clock. Tests use clockwork.NewFakeClock.
func WithClock[T domain.ReadModel](c clockwork.Clock) Option[T] {
	return func(s *Store[T]) { s.clock = c }
}

// WithLogger injects a logger.
func WithLogger[T domain.ReadModel](l ports.Logger) Option[T] {
	return func(s *Store[T]) { s.log = l }
}

// New creates a Store with the given capacity and default TTL. Capacity is
// clamped to a minimum of one; a non-positive defaultTTL falls back to
// domain.DefaultReadModelTTL.
func New[T domain.ReadModel](capacity int, defaultTTL time.Duration, opts ...Option[T]) *Store[T] {
	if capacity < 1 {
		capacity = 1
	}
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultReadModelTTL
	}

	s := &Store[T]{
		clock:      clockwork.NewRealClock(),
		log:        ports.NopLogger{},
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry[T]),
		lru:        list.New(),
		tags:       make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for the given id if present and not expired. An
// expired entry is evicted as a side effect and counts as a miss.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	ent, ok := s.entries[id]
	if !ok {
		s.metrics.Misses++
		return zero, false
	}

	now := s.clock.Now()
	if ent.cache.Expired(now) {
		s.removeLocked(id, ent)
		s.metrics.Misses++
		return zero, false
	}

	ent.cache.Touch(now)
	s.lru.MoveToFront(ent.lruSlot)
	s.metrics.Hits++
	return ent.cache.Value, true
}

// GetStale returns the value even if it has expired. Stale hits are counted
// as hits but tracked separately so callers can see how often they ride on
// expired data.
func (s *Store[T]) GetStale(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	ent, ok := s.entries[id]
	if !ok {
		s.metrics.Misses++
		return zero, false
	}

	now := s.clock.Now()
	if ent.cache.Expired(now) {
		s.metrics.StaleHits++
	} else {
		s.metrics.Hits++
	}

	ent.cache.Touch(now)
	s.lru.MoveToFront(ent.lruSlot)
	return ent.cache.Value, true
}

// Save stores the value under its own ID, overwriting any previous entry and
// its tag associations. When the store is at capacity and the id is new, the
// least-recently-used entries are evicted until room exists; the incoming id
// is never the victim.
func (s *Store[T]) Save(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(value)
}

// SaveMany stores each value in order with Save semantics. There is no
// atomicity across items.
func (s *Store[T]) SaveMany(values []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		s.saveLocked(v)
	}
}

func (s *Store[T]) saveLocked(value T) {
	id := value.ID()
	now := s.clock.Now()

	ttl := s.defaultTTL
	if secs := value.TTLSeconds(); secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	if existing, ok := s.entries[id]; ok {
		s.dropTagsLocked(id, existing.tags)
		existing.cache = domain.CacheEntry[T]{
			Value:          value,
			InsertedAt:     now,
			LastAccessedAt: now,
			ExpiresAt:      now.Add(ttl),
		}
		existing.tags = dedupe(value.Tags())
		s.addTagsLocked(id, existing.tags)
		s.lru.MoveToFront(existing.lruSlot)
		return
	}

	for len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}

	ent := &entry[T]{
		cache: domain.CacheEntry[T]{
			Value:          value,
			InsertedAt:     now,
			LastAccessedAt: now,
			ExpiresAt:      now.Add(ttl),
		},
		tags: dedupe(value.Tags()),
	}
	ent.lruSlot = s.lru.PushFront(id)
	s.entries[id] = ent
	s.addTagsLocked(id, ent.tags)
}

// GetMany returns the present, non-expired values for the given ids,
// preserving input order. Semantics per id are identical to Get.
func (s *Store[T]) GetMany(ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.Get(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// Invalidate removes the entry with the given id. It reports whether the
// entry existed.
func (s *Store[T]) Invalidate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return false
	}
	s.removeLocked(id, ent)
	s.metrics.Invalidations++
	return true
}

// InvalidateByTag removes every entry indexed under the given tag and
// returns the number removed. The tag bucket itself is cleared.
func (s *Store[T]) InvalidateByTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.tags[tag]
	if !ok {
		return 0
	}

	removed := 0
	for id := range bucket {
		if ent, ok := s.entries[id]; ok {
			s.removeLocked(id, ent)
			removed++
		}
	}
	delete(s.tags, tag)
	s.metrics.Invalidations += uint64(removed)
	return removed
}

// InvalidateAll clears the store.
func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Invalidations += uint64(len(s.entries))
	s.entries = make(map[string]*entry[T])
	s.tags = make(map[string]map[string]struct{})
	s.lru.Init()
}

// Contains reports whether a non-expired entry exists for the id. Unlike
// Get, it is a pure query: it does not evict expired entries and does not
// touch LRU order or metrics.
func (s *Store[T]) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return false
	}
	return !ent.cache.Expired(s.clock.Now())
}

// CleanExpired removes all currently-expired entries and returns the count.
// There is no background timer in the store; an external scheduler is
// expected to call this periodically.
func (s *Store[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, ent := range s.entries {
		if ent.cache.Expired(now) {
			s.removeLocked(id, ent)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Metrics returns a snapshot of the store's counters.
func (s *Store[T]) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

func (s *Store[T]) evictOldestLocked() {
	oldest := s.lru.Back()
	if oldest == nil {
		return
	}
	id := oldest.Value.(string)
	if ent, ok := s.entries[id]; ok {
		s.removeLocked(id, ent)
		s.metrics.Evictions++
	}
}

// removeLocked deletes the entry, its tag associations and its LRU slot.
func (s *Store[T]) removeLocked(id string, ent *entry[T]) {
	s.dropTagsLocked(id, ent.tags)
	s.lru.Remove(ent.lruSlot)
	delete(s.entries, id)
}

func (s *Store[T]) addTagsLocked(id string, tags []string) {
	for _, tag := range tags {
		bucket, ok := s.tags[tag]
		if !ok {
			bucket = make(map[string]struct{})
			s.tags[tag] = bucket
		}
		bucket[id] = struct{}{}
	}
}

// dropTagsLocked removes the id from each tag bucket, deleting buckets that
// lose their last reference so the index never points at dead entries.
func (s *Store[T]) dropTagsLocked(id string, tags []string) {
	for _, tag := range tags {
		bucket, ok := s.tags[tag]
		if !ok {
			continue
		}
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(s.tags, tag)
		}
	}
}

func dedupe(tags []string) []string {
	if len(tags) < 2 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
