package domain

import "time"

// DefaultReadModelTTL is applied when a read model does not declare its own
// time-to-live.
const DefaultReadModelTTL = 300 * time.Second

// ReadModel is the capability a value must expose to live in a read-model
// store: a stable identity, invalidation tags, and an optional per-value TTL.
//
// TTLSeconds returning zero or a negative number means "use the store
// default". Tags may be empty; duplicates are ignored.
type ReadModel interface {
	ID() string
	Tags() []string
	CachedAt() time.Time
	TTLSeconds() int
}
