package ports

import (
	"context"
	"io"
	"slices"

	"go.trai.ch/gscript/internal/core/domain"
)

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks

// Capabilities describes what a backend can do.
type Capabilities struct {
	// Targets lists the target kinds the backend can produce.
	Targets []domain.TargetKind
	// InProcess reports whether compilation happens inside this process.
	InProcess bool
}

// Supports reports whether kind is among the backend's targets.
func (c Capabilities) Supports(kind domain.TargetKind) bool {
	return slices.Contains(c.Targets, kind)
}

// Backend identifies a compiler backend. What it can do beyond that is expressed by the
// optional capability interfaces below, discovered with type assertions.
type Backend interface {
	// Name is the identity used by the engine directive and recorded in fingerprints.
	Name() string
	// Capabilities reports the targets the backend can produce.
	Capabilities() Capabilities
}

// CompileOptions carries per-call settings for a compilation.
type CompileOptions struct {
	// StagingDir is a fresh directory on the artifact store's filesystem.
	// On-disk outputs must be written inside it.
	StagingDir string
	// Fingerprint is the cache key the result will be stored under.
	Fingerprint domain.Fingerprint
}

// Compiler turns a compile request into an artifact.
type Compiler interface {
	Backend
	// Compile compiles req. Ordinary compile errors are reported in the result with Success=false.
	// Infrastructure failures return an error wrapping domain.ErrBackendUnavailable.
	Compile(ctx context.Context, req *domain.CompileRequest, opts CompileOptions) (*domain.CompileResult, error)
}

// Checker compiles without producing an artifact.
type Checker interface {
	Backend
	// Check returns the diagnostics of compiling req.
	Check(ctx context.Context, req *domain.CompileRequest) (domain.Diagnostics, error)
}

// CompileHandle is an in-flight compilation that can be cancelled.
type CompileHandle interface {
	// Wait blocks until the compilation finishes.
	Wait() (*domain.CompileResult, error)
	// Cancel terminates the compilation and discards any partial output.
	Cancel()
}

// Starter begins a compilation without waiting for it.
type Starter interface {
	Backend
	// Start launches the compilation of req.
	Start(ctx context.Context, req *domain.CompileRequest, opts CompileOptions) (CompileHandle, error)
}

// LoadOptions configures a loaded module's process-level environment.
type LoadOptions struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Loader brings an artifact into the running process.
type Loader interface {
	Backend
	// Load creates a module from art.
	Load(ctx context.Context, art *domain.Artifact, opts LoadOptions) (Module, error)
}

// Module is a compiled script loaded into the process.
type Module interface {
	// Name is the module's root type name.
	Name() string
	// Types lists the types the module exposes.
	Types() []*domain.TypeDescriptor
	// Entry names the member that runs the script as a program, or "" if it has none.
	Entry() string
	// Close releases the module's resources.
	Close() error
}
