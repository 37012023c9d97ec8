package ports

import "context"

// Telemetry records units of work for the CLI's progress surface. Engine
// code never depends on a concrete recorder; library consumers get the noop
// implementation.
type Telemetry interface {
	// Record starts recording a new vertex.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Log records a message associated with this vertex.
	Log(msg string)
	// Cached marks the vertex as served from cache.
	Cached()
	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
}

type vertexKey struct{}

// ContextWithVertex stores the vertex on the context.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex stored on the context, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
