package ports

import (
	"context"

	"go.trai.ch/gscript/internal/core/domain"
)

// ResolveOptions controls one resolution pass.
type ResolveOptions struct {
	// SearchDirs are probed after the importing file's directory.
	SearchDirs []string
	// Lenient assumes the default extension for imports that match nothing.
	Lenient bool
	// Backend overrides the engine directive.
	Backend string
	// Target is the requested target kind. Empty means in-memory library.
	Target domain.TargetKind
	// RootTypeName names the compiled unit. Empty means domain.DefaultRootTypeName.
	RootTypeName string
}

// ScriptResolver builds compile requests from an entry script.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ScriptResolver interface {
	// Resolve follows the entry script's imports and returns the flattened request.
	Resolve(ctx context.Context, entry string, opts ResolveOptions) (*domain.CompileRequest, error)

	// Invalidate drops any cached parse of path.
	Invalidate(path string)
}
