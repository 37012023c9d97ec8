package readmodel_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/engine/readmodel"
)

type order struct {
	id   string
	tags []string
	at   time.Time
	ttl  int
}

func (o order) ID() string          { return o.id }
func (o order) Tags() []string      { return o.tags }
func (o order) CachedAt() time.Time { return o.at }
func (o order) TTLSeconds() int     { return o.ttl }

func newStore(t *testing.T, capacity int, ttl time.Duration) (*readmodel.Store[order], clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	return readmodel.New(capacity, ttl, readmodel.WithClock[order](clock)), clock
}

func TestStore_SaveAndGet(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})

	got, ok := s.Get("o1")
	require.True(t, ok)
	assert.Equal(t, "o1", got.ID())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_TTLExpiry(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})

	// Still fresh exactly at the TTL boundary.
	clock.Advance(time.Minute)
	_, ok := s.Get("o1")
	assert.True(t, ok)

	clock.Advance(time.Nanosecond)
	_, ok = s.Get("o1")
	assert.False(t, ok)
	// The expired entry was evicted on read.
	assert.Equal(t, 0, s.Len())
}

func TestStore_PerValueTTLOverride(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "short", ttl: 1})
	s.Save(order{id: "long", ttl: 3600})

	clock.Advance(2 * time.Second)

	_, ok := s.Get("short")
	assert.False(t, ok)
	_, ok = s.Get("long")
	assert.True(t, ok)
}

func TestStore_LRUEviction(t *testing.T) {
	s, _ := newStore(t, 3, time.Minute)

	s.Save(order{id: "a"})
	s.Save(order{id: "b"})
	s.Save(order{id: "c"})

	// Touch "a" so "b" becomes the oldest.
	_, ok := s.Get("a")
	require.True(t, ok)

	s.Save(order{id: "d"})

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))
	assert.True(t, s.Contains("c"))
	assert.True(t, s.Contains("d"))
	assert.Equal(t, uint64(1), s.Metrics().Evictions)
}

func TestStore_OverwriteDoesNotEvict(t *testing.T) {
	s, _ := newStore(t, 2, time.Minute)

	s.Save(order{id: "a"})
	s.Save(order{id: "b"})
	s.Save(order{id: "a", tags: []string{"fresh"}})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint64(0), s.Metrics().Evictions)
}

func TestStore_GetStale(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})
	clock.Advance(2 * time.Minute)

	_, ok := s.Get("o1")
	require.False(t, ok, "expired entry must not be a fresh hit")

	// Get evicted the expired entry, so re-insert and expire again.
	s.Save(order{id: "o1"})
	clock.Advance(2 * time.Minute)

	got, ok := s.GetStale("o1")
	require.True(t, ok)
	assert.Equal(t, "o1", got.ID())

	m := s.Metrics()
	assert.Equal(t, uint64(1), m.StaleHits)
}

func TestStore_InvalidateByTag(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1", tags: []string{"orders", "user:42"}})
	s.Save(order{id: "o2", tags: []string{"orders"}})
	s.Save(order{id: "p1", tags: []string{"products"}})

	removed := s.InvalidateByTag("orders")
	assert.Equal(t, 2, removed)
	assert.False(t, s.Contains("o1"))
	assert.False(t, s.Contains("o2"))
	assert.True(t, s.Contains("p1"))

	// The bucket is gone; a second pass removes nothing.
	assert.Equal(t, 0, s.InvalidateByTag("orders"))
	assert.Equal(t, 0, s.InvalidateByTag("unknown"))
}

func TestStore_TagReindexOnOverwrite(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1", tags: []string{"old"}})
	s.Save(order{id: "o1", tags: []string{"new"}})

	assert.Equal(t, 0, s.InvalidateByTag("old"))
	assert.Equal(t, 1, s.InvalidateByTag("new"))
}

func TestStore_Invalidate(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})

	assert.True(t, s.Invalidate("o1"))
	assert.False(t, s.Invalidate("o1"))
}

func TestStore_InvalidateAll(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	for i := 0; i < 5; i++ {
		s.Save(order{id: fmt.Sprintf("o%d", i), tags: []string{"orders"}})
	}

	s.InvalidateAll()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.InvalidateByTag("orders"))
	assert.Equal(t, uint64(5), s.Metrics().Invalidations)
}

func TestStore_ContainsIsPure(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})
	clock.Advance(2 * time.Minute)

	assert.False(t, s.Contains("o1"))
	// Contains neither evicts nor counts.
	assert.Equal(t, 1, s.Len())
	m := s.Metrics()
	assert.Equal(t, uint64(0), m.Hits)
	assert.Equal(t, uint64(0), m.Misses)
}

func TestStore_CleanExpired(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "stale1"})
	s.Save(order{id: "stale2"})
	clock.Advance(2 * time.Minute)
	s.Save(order{id: "fresh"})

	assert.Equal(t, 2, s.CleanExpired())
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("fresh"))
}

func TestStore_GetMany(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.Save(order{id: "a"})
	s.Save(order{id: "c"})

	got := s.GetMany([]string{"a", "b", "c"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID())
	assert.Equal(t, "c", got[1].ID())
}

func TestStore_SaveMany(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)

	s.SaveMany([]order{{id: "a"}, {id: "b"}, {id: "a"}})

	assert.Equal(t, 2, s.Len())
}

func TestStore_CapacityClamped(t *testing.T) {
	s, _ := newStore(t, 0, time.Minute)

	s.Save(order{id: "a"})
	s.Save(order{id: "b"})

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("b"))
}

func TestMetrics_HitRatio(t *testing.T) {
	s, clock := newStore(t, 10, time.Minute)

	s.Save(order{id: "o1"})
	_, _ = s.Get("o1")
	_, _ = s.Get("o1")
	_, _ = s.Get("missing")

	clock.Advance(2 * time.Minute)
	_, _ = s.GetStale("o1")

	m := s.Metrics()
	assert.Equal(t, uint64(2), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
	assert.Equal(t, uint64(1), m.StaleHits)
	assert.InDelta(t, 0.75, m.HitRatio(), 0.0001)
}

func TestMetrics_HitRatioEmpty(t *testing.T) {
	s, _ := newStore(t, 10, time.Minute)
	assert.Equal(t, 0.0, s.Metrics().HitRatio())
}
