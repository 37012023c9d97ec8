// Package telemetry provides ports.Telemetry implementations.
package telemetry

import (
	"context"

	"go.trai.ch/stash/internal/core/ports"
)

// Noop is a no-op implementation of ports.Telemetry for library consumers
// that do not record progress.
type Noop struct{}

// NewNoop creates a new Noop.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns a no-op vertex.
func (t *Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, NoopVertex{}
}

// Close does nothing.
func (t *Noop) Close() error { return nil }

// NoopVertex is a no-op implementation of ports.Vertex.
type NoopVertex struct{}

// Log does nothing.
func (NoopVertex) Log(string) {}

// Cached does nothing.
func (NoopVertex) Cached() {}

// Complete does nothing.
func (NoopVertex) Complete(error) {}
