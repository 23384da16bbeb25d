// Package gotool implements the external-process backend. It writes the concatenated unit
// to disk and runs a configured compiler command, by default the go toolchain.
package gotool

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/zerr"
)

// Name is the backend identity used by the engine directive.
const Name = "go"

var (
	_ ports.Compiler = (*Backend)(nil)
	_ ports.Checker  = (*Backend)(nil)
	_ ports.Starter  = (*Backend)(nil)
	_ ports.Loader   = (*Backend)(nil)
)

// Backend runs an external compiler process.
type Backend struct {
	cfg *domain.ExternalBackendConfig
}

// New creates a Backend. cfg is read on every call.
func New(cfg *domain.ExternalBackendConfig) *Backend {
	if cfg == nil {
		cfg = &domain.DefaultConfig().Backend.External
	}
	return &Backend{cfg: cfg}
}

// Name implements ports.Backend.
func (b *Backend) Name() string {
	return Name
}

// Capabilities implements ports.Backend.
func (b *Backend) Capabilities() ports.Capabilities {
	return ports.Capabilities{
		Targets: []domain.TargetKind{domain.TargetDiskExecutable, domain.TargetDiskLibrary},
	}
}

// Compile runs the compiler and waits for it.
func (b *Backend) Compile(
	ctx context.Context,
	req *domain.CompileRequest,
	opts ports.CompileOptions,
) (*domain.CompileResult, error) {
	h, err := b.Start(ctx, req, opts)
	if err != nil {
		return nil, err
	}
	return h.Wait()
}

// Start launches the compiler for req. Source-level errors found before launch are
// reported through an already finished handle.
func (b *Backend) Start(
	ctx context.Context,
	req *domain.CompileRequest,
	opts ports.CompileOptions,
) (ports.CompileHandle, error) {
	target := req.Target
	if target == "" {
		target = domain.TargetDiskExecutable
	}
	var templates []string
	switch target {
	case domain.TargetDiskExecutable:
		templates = b.cfg.ExecutableArgs
	case domain.TargetDiskLibrary:
		templates = b.cfg.LibraryArgs
	default:
		err := zerr.With(domain.Detail(domain.ErrUnsupportedBackend, "external backend only produces on-disk targets"),
			"backend", Name)
		return nil, zerr.With(err, "target", string(target))
	}

	unit, diags := compiler.Concatenate(req, unitOptions(req, target))
	if len(diags) > 0 {
		return finished(&domain.CompileResult{Diagnostics: diags}), nil
	}

	src, err := materialize(unit, unitOptions(req, target).FileName)
	if err != nil {
		return nil, unavailable(err)
	}

	stage := opts.StagingDir
	ownStage := stage == ""
	if ownStage {
		if stage, err = os.MkdirTemp("", "gscript-out-"); err != nil {
			_ = os.RemoveAll(filepath.Dir(src))
			return nil, unavailable(err)
		}
	}
	output := filepath.Join(stage, outputName(req, target))

	args := ExpandArgs(templates, b.values(req, src, output))
	p, err := b.start(ctx, filepath.Dir(src), args)
	if err != nil {
		_ = os.RemoveAll(filepath.Dir(src))
		if ownStage {
			_ = os.RemoveAll(stage)
		}
		return nil, err
	}

	art := &domain.Artifact{
		Target:    target,
		Path:      output,
		DebugInfo: unit.Lines,
		Module:    rootName(req),
		Entry:     unit.Entry,
	}
	if target == domain.TargetDiskLibrary {
		decls, err := compiler.Declarations(unit.Source)
		if err == nil {
			art.Exports = decls.Funcs
		}
	}

	h := &handle{
		proc:     p,
		srcDir:   filepath.Dir(src),
		stage:    stage,
		ownStage: ownStage,
		output:   output,
		artifact: art,
		lines:    unit.Lines,
		done:     make(chan struct{}),
	}
	go h.run()
	return h, nil
}

// Check runs the configured check command. It produces no artifact.
func (b *Backend) Check(ctx context.Context, req *domain.CompileRequest) (domain.Diagnostics, error) {
	target := req.Target
	if target == "" {
		target = domain.TargetDiskExecutable
	}
	opts := unitOptions(req, target)
	unit, diags := compiler.Concatenate(req, opts)
	if len(diags) > 0 {
		return diags, nil
	}

	src, err := materialize(unit, opts.FileName)
	if err != nil {
		return nil, unavailable(err)
	}
	defer func() { _ = os.RemoveAll(filepath.Dir(src)) }()

	args := ExpandArgs(b.cfg.CheckArgs, b.values(req, src, ""))
	p, err := b.start(ctx, filepath.Dir(src), args)
	if err != nil {
		return nil, err
	}
	out, err := p.wait()
	if err != nil {
		return nil, err
	}
	return out.diagnostics(unit.Lines), nil
}

func (b *Backend) values(req *domain.CompileRequest, src, output string) map[string][]string {
	refs := make([]string, 0, len(req.References))
	for _, ref := range req.References {
		if ref.IsFile() {
			refs = append(refs, ref.Path)
		}
	}
	values := map[string][]string{
		PlaceholderSources:    {src},
		PlaceholderReferences: refs,
		PlaceholderFlags:      req.CompilerOptions,
		PlaceholderResources:  req.Resources,
	}
	if output != "" {
		values[PlaceholderOutput] = []string{output}
	}
	return values
}

func unitOptions(req *domain.CompileRequest, target domain.TargetKind) compiler.UnitOptions {
	return compiler.UnitOptions{
		Package:    "main",
		FileName:   "gscript_" + rootName(req) + ".go",
		AliasEntry: target == domain.TargetDiskLibrary,
	}
}

func rootName(req *domain.CompileRequest) string {
	if req.RootTypeName != "" {
		return req.RootTypeName
	}
	return domain.DefaultRootTypeName
}

func outputName(req *domain.CompileRequest, target domain.TargetKind) string {
	name := rootName(req)
	switch {
	case target == domain.TargetDiskLibrary:
		return name + ".so"
	case runtime.GOOS == "windows":
		return name + ".exe"
	default:
		return name
	}
}

// materialize writes the unit into a fresh directory and returns the file path.
func materialize(unit *compiler.Unit, fileName string) (string, error) {
	dir, err := os.MkdirTemp("", "gscript-src-")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create source directory")
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, unit.Source, domain.PrivateFilePerm); err != nil {
		_ = os.RemoveAll(dir)
		return "", zerr.With(zerr.Wrap(err, "failed to write compile unit"), "path", path)
	}
	return path, nil
}

func unavailable(err error) error {
	return zerr.With(domain.WrapKind(err, domain.ErrBackendUnavailable), "backend", Name)
}

func lookPath(command string) (string, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return "", zerr.With(unavailable(err), "command", command)
	}
	return path, nil
}
