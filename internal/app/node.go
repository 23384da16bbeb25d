package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/gotool"    //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/adapters/yaegi"     //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/cache"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/gscript/internal/engine/resolver"
)

const (
	// RegistryNodeID is the unique identifier for the backend registry Graft node.
	RegistryNodeID graft.ID = "app.registry"
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*compiler.Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			yaegi.NodeID,
			gotool.NodeID,
		},
		Run: runRegistryNode,
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			resolver.NodeID,
			cache.NodeID,
			RegistryNodeID,
			shell.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			config.ConfigNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runRegistryNode(ctx context.Context) (*compiler.Registry, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	inProcess, err := graft.Dep[*yaegi.Backend](ctx)
	if err != nil {
		return nil, err
	}

	external, err := graft.Dep[*gotool.Backend](ctx)
	if err != nil {
		return nil, err
	}

	return compiler.NewRegistry(&cfg.Backend, inProcess, external), nil
}

func runAppNode(ctx context.Context) (*App, error) {
	scripts, err := graft.Dep[ports.ScriptResolver](ctx)
	if err != nil {
		return nil, err
	}

	c, err := graft.Dep[*cache.Cache](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[*compiler.Registry](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.Runner](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	return New(scripts, c, registry, runner, w, log, tracer, cfg), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{App: a, Logger: log}, nil
}
