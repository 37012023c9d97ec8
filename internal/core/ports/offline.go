package ports

import (
	"context"

	"go.trai.ch/stash/internal/core/domain"
)

// Mutation is a write operation captured while offline. The caching layer
// has no opinion on how it is persisted; it only forwards it.
type Mutation struct {
	Endpoint string
	Method   string
	Body     domain.Value
}

// MutationHandler receives offline mutations from the data cache. Supplied
// by the domain layer that owns the offline queue.
type MutationHandler func(ctx context.Context, m Mutation) error
