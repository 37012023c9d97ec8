package progrock

import (
	"fmt"

	"github.com/vito/progrock"
)

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Log records a message associated with this vertex.
func (v *Vertex) Log(msg string) {
	_, _ = fmt.Fprintln(v.vertex.Stdout(), msg)
}

// Cached marks the vertex as served from cache.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}

// Complete marks the vertex as finished (successfully or with an error).
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}
