package httpclient

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the network client adapter node.
const NodeID graft.ID = "adapter.httpclient"

func init() {
	graft.Register(graft.Node[ports.NetworkClient]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.NetworkClient, error) {
			return New(0), nil
		},
	})
}
