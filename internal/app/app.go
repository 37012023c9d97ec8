// Package app implements the application layer for stash: it composes the
// screen cache, the data cache and the prefetcher behind one facade.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/engine/prefetch"
	"go.trai.ch/stash/internal/engine/remote"
	"go.trai.ch/stash/internal/engine/screens"
)

// App owns the caching layer's components. All methods are safe for
// concurrent use; each cache serializes its own state internally.
type App struct {
	screens    *screens.Cache
	data       *remote.Cache
	prefetcher *prefetch.Coordinator
	log        ports.Logger
	telemetry  ports.Telemetry
}

// Option configures the App.
type Option func(*options)

type options struct {
	mutations ports.MutationHandler
}

// WithMutationHandler routes offline mutations to the given handler instead
// of the default log-and-drop behavior.
func WithMutationHandler(h ports.MutationHandler) Option {
	return func(o *options) { o.mutations = h }
}

// New creates an App from the given configuration and collaborators.
func New(cfg *domain.Config, client ports.NetworkClient, log ports.Logger, tel ports.Telemetry, opts ...Option) *App {
	if log == nil {
		log = ports.NopLogger{}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.mutations == nil {
		o.mutations = func(_ context.Context, m ports.Mutation) error {
			log.Info("offline mutation queued", "endpoint", m.Endpoint, "method", m.Method)
			return nil
		}
	}

	screenCache := screens.New(
		client,
		cfg.MobileBaseURL,
		cfg.ScreenCacheCapacity,
		cfg.ScreenDefaultTTL,
		screens.WithLogger(log),
	)

	dataCache := remote.New(
		client,
		remote.Config{
			MobileBaseURL: cfg.MobileBaseURL,
			AdminBaseURL:  cfg.AdminBaseURL,
			Capacity:      cfg.DataCacheCapacity,
			LimitParam:    cfg.Pagination.LimitParam,
			OffsetParam:   cfg.Pagination.OffsetParam,
			PageSize:      cfg.Pagination.PageSize,
		},
		remote.WithLogger(log),
		remote.WithMutationHandler(o.mutations),
	)

	return &App{
		screens:    screenCache,
		data:       dataCache,
		prefetcher: prefetch.New(cfg.PrefetchThreshold, prefetch.WithLogger(log)),
		log:        log,
		telemetry:  tel,
	}
}

// LoadScreen returns the screen definition for the given key.
func (a *App) LoadScreen(ctx context.Context, key string) (domain.Screen, error) {
	ctx, vertex := a.telemetry.Record(ctx, "screen "+key)
	screen, err := a.screens.LoadScreen(ctx, key)
	vertex.Complete(err)
	return screen, err
}

// FetchData returns the query result for endpoint+params. The boolean result
// reports whether the value is stale.
func (a *App) FetchData(ctx context.Context, endpoint string, params map[string]string) (domain.Value, bool, error) {
	ctx, vertex := a.telemetry.Record(ctx, "fetch "+endpoint)
	value, stale, err := a.data.LoadData(ctx, endpoint, params)
	if stale {
		vertex.Log("serving stale data")
	}
	vertex.Complete(err)
	return value, stale, err
}

// NextPage fetches the page starting at offset, with pagination metadata.
func (a *App) NextPage(ctx context.Context, endpoint string, offset int) (domain.Value, remote.Page, error) {
	ctx, vertex := a.telemetry.Record(ctx, "page "+endpoint)
	value, page, err := a.data.LoadNextPageWithMeta(ctx, endpoint, offset)
	vertex.Complete(err)
	return value, page, err
}

// Seed pre-populates the screen cache from a sync bundle. It returns the
// number of screens inserted.
func (a *App) Seed(ctx context.Context, bundle map[string]domain.BundleScreen) int {
	ctx, vertex := a.telemetry.Record(ctx, "seed bundle")
	inserted := a.screens.SeedFromBundle(ctx, bundle)
	vertex.Log(fmt.Sprintf("seeded %d of %d screens", inserted, len(bundle)))
	vertex.Complete(nil)
	return inserted
}

// CheckScreenVersion probes the server for a newer version of a
// bundle-seeded screen, invalidating the cached entry when one exists.
func (a *App) CheckScreenVersion(ctx context.Context, key string) bool {
	return a.screens.CheckVersion(ctx, key)
}

// SetOnline flips the data cache's connectivity flag.
func (a *App) SetOnline(online bool) {
	a.data.SetOnline(online)
}

// EnqueueMutation forwards an offline write mutation.
func (a *App) EnqueueMutation(ctx context.Context, endpoint, method string, body domain.Value) error {
	return a.data.EnqueueOfflineMutation(ctx, endpoint, method, body)
}

// EvaluatePrefetch considers fetching the page after the current items when
// the visible position is near the list's end.
func (a *App) EvaluatePrefetch(ctx context.Context, endpoint string, visibleIndex, totalItems int, hasMore bool) {
	a.prefetcher.EvaluatePrefetch(ctx, visibleIndex, totalItems, hasMore, func(ctx context.Context) (domain.Value, error) {
		return a.data.LoadNextPage(ctx, endpoint, totalItems)
	})
}

// ConsumePrefetched returns the buffered prefetch result, if any.
func (a *App) ConsumePrefetched() (domain.Value, bool) {
	return a.prefetcher.ConsumePrefetched()
}

// CancelPrefetch cancels any in-flight prefetch and clears buffered state.
func (a *App) CancelPrefetch() {
	a.prefetcher.CancelPrefetch()
}

// ScreenStats returns the screen cache counters.
func (a *App) ScreenStats() screens.Stats {
	return a.screens.Stats()
}

// DataStats returns the data cache counters.
func (a *App) DataStats() remote.Stats {
	return a.data.Stats()
}

// Close flushes the telemetry recorder.
func (a *App) Close() error {
	return a.telemetry.Close()
}
