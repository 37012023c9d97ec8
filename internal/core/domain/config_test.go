package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/stash/internal/core/domain"
)

func TestConfig_NormalizeDefaults(t *testing.T) {
	cfg := domain.Config{MobileBaseURL: "https://api.example.com/"}
	cfg.Normalize()

	assert.Equal(t, "https://api.example.com", cfg.MobileBaseURL)
	assert.Equal(t, domain.DefaultCacheCapacity, cfg.ScreenCacheCapacity)
	assert.Equal(t, domain.DefaultCacheCapacity, cfg.DataCacheCapacity)
	assert.Equal(t, domain.DefaultScreenTTL, cfg.ScreenDefaultTTL)
	assert.Equal(t, domain.DefaultReadModelTTL, cfg.ReadModelTTL)
	assert.Equal(t, domain.DefaultLimitParam, cfg.Pagination.LimitParam)
	assert.Equal(t, domain.DefaultOffsetParam, cfg.Pagination.OffsetParam)
	assert.Equal(t, domain.DefaultPageSize, cfg.Pagination.PageSize)
	assert.Equal(t, domain.DefaultPrefetchThreshold, cfg.PrefetchThreshold)
}

func TestConfig_NormalizeKeepsExplicitZeroTTL(t *testing.T) {
	cfg := domain.Config{
		MobileBaseURL:    "https://api.example.com",
		ScreenDefaultTTL: 0,
		ScreenTTLSet:     true,
	}
	cfg.Normalize()

	// An explicit zero disables screen caching and must survive Normalize.
	assert.Equal(t, time.Duration(0), cfg.ScreenDefaultTTL)
}

func TestCacheEntry_Expired(t *testing.T) {
	now := time.Now()

	never := domain.CacheEntry[string]{Value: "x"}
	assert.False(t, never.Expired(now.Add(100*time.Hour)))

	e := domain.CacheEntry[string]{Value: "x", ExpiresAt: now}
	assert.False(t, e.Expired(now), "the boundary instant is still fresh")
	assert.True(t, e.Expired(now.Add(time.Nanosecond)))
}
