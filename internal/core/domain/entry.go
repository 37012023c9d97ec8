package domain

import "time"

// CacheEntry wraps a stored value with its freshness metadata. Entries are
// owned exclusively by the enclosing cache map; callers receive the value,
// never the entry.
type CacheEntry[T any] struct {
	Value          T
	InsertedAt     time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time // zero => never expires
}

// Expired reports whether the entry's TTL has elapsed at the given instant.
func (e *CacheEntry[T]) Expired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}

// Touch marks the entry as accessed.
func (e *CacheEntry[T]) Touch(now time.Time) {
	e.LastAccessedAt = now
}
