package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/adapters/fs"
	"go.trai.ch/gscript/internal/adapters/logger"
	"go.trai.ch/gscript/internal/adapters/pkgroot"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
)

// NodeID is the unique identifier for the script resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[ports.ScriptResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			config.ConfigNodeID,
			pkgroot.NodeID,
			fs.WalkerNodeID,
			fs.HasherNodeID,
		},
		Run: func(ctx context.Context) (ports.ScriptResolver, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			packages, err := graft.Dep[ports.PackageResolver](ctx)
			if err != nil {
				return nil, err
			}
			stater, err := graft.Dep[ports.InputStater](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, packages, stater, hasher, cfg.Resolver), nil
		},
	})
}
