package pkgroot

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
)

// NodeID is the unique identifier for the package resolver Graft node.
const NodeID graft.ID = "adapter.package_resolver"

func init() {
	graft.Register(graft.Node[ports.PackageResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.PackageResolver, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(cfg.Packages.Root), nil
		},
	})
}
