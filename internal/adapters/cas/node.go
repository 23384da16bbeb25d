package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
)

// NodeID is the unique identifier for the artifact store Graft node.
const NodeID graft.ID = "adapter.artifact_store"

func init() {
	graft.Register(graft.Node[ports.ArtifactStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.ArtifactStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(cfg.Cache.Dir)
		},
	})
}
