package domain

import (
	"strings"
	"time"
)

// Defaults applied by Config.Normalize.
const (
	DefaultCacheCapacity     = 100
	DefaultScreenTTL         = 300 * time.Second
	DefaultPageSize          = 20
	DefaultLimitParam        = "limit"
	DefaultOffsetParam       = "offset"
	DefaultPrefetchThreshold = 5
)

// PaginationConfig names the query parameters used for paginated endpoints.
type PaginationConfig struct {
	LimitParam  string
	OffsetParam string
	PageSize    int
}

// Config carries the construction parameters for the caching layer.
//
// ScreenDefaultTTL set to zero disables screen caching globally; it is not
// defaulted away by Normalize. A zero ReadModelTTL falls back to
// DefaultReadModelTTL per value.
type Config struct {
	MobileBaseURL string
	AdminBaseURL  string

	ScreenCacheCapacity int
	DataCacheCapacity   int
	ReadModelCapacity   int

	ScreenDefaultTTL time.Duration
	ScreenTTLSet     bool // distinguishes "unset" from an explicit zero
	ReadModelTTL     time.Duration

	Pagination        PaginationConfig
	PrefetchThreshold int
}

// Normalize fills in defaults and strips trailing slashes from base URLs.
func (c *Config) Normalize() {
	c.MobileBaseURL = strings.TrimRight(c.MobileBaseURL, "/")
	c.AdminBaseURL = strings.TrimRight(c.AdminBaseURL, "/")

	if c.ScreenCacheCapacity <= 0 {
		c.ScreenCacheCapacity = DefaultCacheCapacity
	}
	if c.DataCacheCapacity <= 0 {
		c.DataCacheCapacity = DefaultCacheCapacity
	}
	if c.ReadModelCapacity <= 0 {
		c.ReadModelCapacity = DefaultCacheCapacity
	}
	if !c.ScreenTTLSet {
		c.ScreenDefaultTTL = DefaultScreenTTL
	}
	if c.ReadModelTTL <= 0 {
		c.ReadModelTTL = DefaultReadModelTTL
	}
	if c.Pagination.LimitParam == "" {
		c.Pagination.LimitParam = DefaultLimitParam
	}
	if c.Pagination.OffsetParam == "" {
		c.Pagination.OffsetParam = DefaultOffsetParam
	}
	if c.Pagination.PageSize <= 0 {
		c.Pagination.PageSize = DefaultPageSize
	}
	if c.PrefetchThreshold <= 0 {
		c.PrefetchThreshold = DefaultPrefetchThreshold
	}
}
