package screens

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

type seeded struct {
	key     string
	screen  domain.Screen
	ttl     time.Duration
	version string
}

// SeedFromBundle pre-populates the cache from a sync bundle. Entries whose
// pattern resolves to a zero TTL (login, or a globally disabled cache) are
// skipped, as are entries that fail conversion; one malformed entry never
// blocks the batch. It returns the number of screens inserted.
//
// Conversion is pure per entry and runs in parallel; the final map insert is
// a single critical section so cache invariants hold.
func (c *Cache) SeedFromBundle(ctx context.Context, bundle map[string]domain.BundleScreen) int {
	var (
		mu        sync.Mutex
		converted []seeded
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for key, dto := range bundle {
		g.Go(func() error {
			screen, ttl, err := c.convert(key, dto)
			if err != nil {
				c.log.Warn("skipping bundle entry", "screen_key", key, "error", err.Error())
				return nil
			}
			if ttl == 0 {
				c.log.Debug("skipping non-cacheable bundle entry", "screen_key", key)
				return nil
			}

			mu.Lock()
			converted = append(converted, seeded{key: key, screen: screen, ttl: ttl, version: dto.Version})
			mu.Unlock()
			return nil
		})
	}
	// Conversion failures are skipped, never returned.
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range converted {
		c.insertLocked(s.key, s.screen, s.ttl)
		c.bundleVersions[s.key] = s.version
	}
	return len(converted)
}

// convert re-decodes a bundle descriptor into the cache's internal screen
// shape. The bundle's template must be a JSON object.
func (c *Cache) convert(key string, dto domain.BundleScreen) (domain.Screen, time.Duration, error) {
	pattern, err := domain.ParsePattern(dto.Pattern)
	if err != nil {
		return domain.Screen{}, 0, err
	}

	ttl := PatternTTL(pattern, c.defaultTTL)
	if ttl == 0 {
		return domain.Screen{}, 0, nil
	}

	major, err := dto.MajorVersion()
	if err != nil {
		return domain.Screen{}, 0, err
	}

	if _, ok := dto.Template.AsObject(); !ok {
		return domain.Screen{}, 0, domain.ErrDecodingFailure
	}

	screenKey := dto.ScreenKey
	if screenKey == "" {
		screenKey = key
	}

	return domain.Screen{
		Key:           screenKey,
		Name:          dto.ScreenName,
		Pattern:       pattern,
		HandlerKey:    dto.HandlerKey,
		Version:       major,
		Template:      dto.Template,
		SlotData:      dto.SlotData,
		BundleVersion: dto.Version,
	}, ttl, nil
}
