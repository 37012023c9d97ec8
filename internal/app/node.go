package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/adapters/config"            //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/httpclient"        //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/logger"            //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the wired application with the collaborators the CLI
// needs direct access to.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	// App node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			httpclient.NodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runAppNode,
	})

	// Components node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	client, err := graft.Dep[ports.NetworkClient](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := loader.Load(".")
	if err != nil {
		return nil, err
	}

	return New(cfg, client, log, tel), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       application,
		Logger:    log,
		Telemetry: tel,
	}, nil
}
