// Package prefetch implements a single-slot look-ahead prefetcher for
// paginated lists.
package prefetch

import (
	"context"
	"sync"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// LoadFunc fetches the next page. Supplied by the caller on each evaluation.
type LoadFunc func(ctx context.Context) (domain.Value, error)

// Coordinator speculatively fetches the next page of a list when the user
// scrolls near its end. At most one prefetch is in flight and at most one
// unconsumed result is buffered at a time.
//
// Late completions are discarded by a generation check: a result only lands
// in the buffer when the generation captured at trigger time still matches,
// so a cancelled or superseded prefetch can never overwrite newer state.
type Coordinator struct {
	log       ports.Logger
	threshold int

	mu         sync.Mutex
	generation uint64
	inFlight   bool
	cancel     context.CancelFunc
	buffered   *domain.Value
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger injects a logger.
func WithLogger(l ports.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// New creates a Coordinator. A non-positive threshold falls back to
// domain.DefaultPrefetchThreshold.
func New(threshold int, opts ...Option) *Coordinator {
	if threshold <= 0 {
		threshold = domain.DefaultPrefetchThreshold
	}
	c := &Coordinator{
		log:       ports.NopLogger{},
		threshold: threshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EvaluatePrefetch starts a prefetch when the visible position is within the
// threshold of the list's end, more pages exist, nothing is in flight and no
// unconsumed result is buffered. Load failures are swallowed: the buffer
// stays empty and the next evaluation retries.
func (c *Coordinator) EvaluatePrefetch(ctx context.Context, visibleIndex, totalItems int, hasMore bool, load LoadFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !hasMore || c.inFlight || c.buffered != nil {
		return
	}
	if totalItems-visibleIndex-1 > c.threshold {
		return
	}

	c.generation++
	gen := c.generation
	c.inFlight = true

	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go func() {
		// Release the context once the load returns; CancelPrefetch may have
		// cancelled it already, which is fine.
		defer cancel()

		value, err := load(loadCtx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if gen != c.generation {
			// Superseded or cancelled; the result must not surface.
			return
		}

		c.inFlight = false
		c.cancel = nil

		if err != nil || loadCtx.Err() != nil {
			if err != nil {
				c.log.Debug("prefetch failed", "error", err.Error())
			}
			return
		}
		c.buffered = &value
	}()
}

// ConsumePrefetched returns the buffered result and clears the slot. The
// second result is false when nothing is buffered.
func (c *Coordinator) ConsumePrefetched() (domain.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buffered == nil {
		return domain.Value{}, false
	}
	value := *c.buffered
	c.buffered = nil
	return value, true
}

// CancelPrefetch cancels any in-flight task and clears both the in-progress
// and buffered state. Safe to call at any time, including when idle.
func (c *Coordinator) CancelPrefetch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.inFlight = false
	c.buffered = nil
}

// InProgress reports whether a prefetch is currently running.
func (c *Coordinator) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
