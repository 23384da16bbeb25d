package gotool

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/core/domain"
)

// NodeID is the unique identifier for the external backend Graft node.
const NodeID graft.ID = "adapter.backend.go"

func init() {
	graft.Register(graft.Node[*Backend]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (*Backend, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(&cfg.Backend.External), nil
		},
	})
}
