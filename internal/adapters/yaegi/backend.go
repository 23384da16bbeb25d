// Package yaegi implements the in-process backend on top of the yaegi Go interpreter.
package yaegi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/zerr"
)

// Name is the backend identity used by the engine directive.
const Name = "yaegi"

var (
	_ ports.Compiler = (*Backend)(nil)
	_ ports.Checker  = (*Backend)(nil)
	_ ports.Loader   = (*Backend)(nil)
)

// Backend compiles scripts in process. Artifacts are the concatenated source; loading
// evaluates it in a fresh interpreter.
type Backend struct {
	logger ports.Logger
}

// New creates a Backend.
func New(logger ports.Logger) *Backend {
	return &Backend{logger: logger}
}

// Name implements ports.Backend.
func (b *Backend) Name() string {
	return Name
}

// Capabilities implements ports.Backend.
func (b *Backend) Capabilities() ports.Capabilities {
	return ports.Capabilities{
		Targets:   []domain.TargetKind{domain.TargetMemoryLibrary},
		InProcess: true,
	}
}

// Compile type-checks the request without running it.
func (b *Backend) Compile(
	ctx context.Context,
	req *domain.CompileRequest,
	_ ports.CompileOptions,
) (*domain.CompileResult, error) {
	unit, imports, diags, err := b.compile(ctx, req)
	if err != nil {
		return nil, err
	}
	if diags.HasErrors() {
		return &domain.CompileResult{Diagnostics: diags}, nil
	}

	return &domain.CompileResult{
		Success:     true,
		Diagnostics: diags,
		Artifact: &domain.Artifact{
			Target:    domain.TargetMemoryLibrary,
			Blob:      unit.Source,
			DebugInfo: unit.Lines,
			Module:    rootName(req),
			Entry:     unit.Entry,
			Imports:   imports,
		},
	}, nil
}

// Check returns the diagnostics of compiling req.
func (b *Backend) Check(ctx context.Context, req *domain.CompileRequest) (domain.Diagnostics, error) {
	_, _, diags, err := b.compile(ctx, req)
	return diags, err
}

func (b *Backend) compile(
	ctx context.Context,
	req *domain.CompileRequest,
) (*compiler.Unit, map[string]string, domain.Diagnostics, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	if req.Target != "" && req.Target != domain.TargetMemoryLibrary {
		err := zerr.With(domain.Detail(domain.ErrUnsupportedBackend, "in-process backend only produces memory libraries"),
			"backend", Name)
		return nil, nil, nil, zerr.With(err, "target", string(req.Target))
	}

	unit, diags := compiler.Concatenate(req, unitOptions(req))
	if len(diags) > 0 {
		return nil, nil, diags, nil
	}

	imports, err := b.importRoots(req.References)
	if err != nil {
		return nil, nil, nil, unavailable(err)
	}
	gopath, cleanup, err := linkGoPath(imports)
	if err != nil {
		return nil, nil, nil, unavailable(err)
	}
	defer cleanup()

	i := interp.New(interp.Options{GoPath: gopath, Stdout: io.Discard, Stderr: io.Discard})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, nil, nil, unavailable(err)
	}
	if err := compileSource(i, unit.Source); err != nil {
		return unit, imports, compiler.Diagnose(err, unit.Lines), nil
	}
	return unit, imports, nil, nil
}

// Load evaluates an in-memory artifact and describes its exported declarations.
func (b *Backend) Load(ctx context.Context, art *domain.Artifact, opts ports.LoadOptions) (ports.Module, error) {
	if !art.InMemory() {
		return nil, zerr.With(domain.Detail(domain.ErrNotLoadable, "artifact has no in-memory content"),
			"fingerprint", art.Fingerprint.String())
	}

	gopath, cleanup, err := linkGoPath(art.Imports)
	if err != nil {
		return nil, unavailable(err)
	}

	var stdin io.Reader = os.Stdin
	if opts.Stdin != nil {
		stdin = opts.Stdin
	}
	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if opts.Stdout != nil {
		stdout = opts.Stdout
	}
	if opts.Stderr != nil {
		stderr = opts.Stderr
	}

	i := interp.New(interp.Options{
		GoPath: gopath,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Args:   append([]string{art.Module}, opts.Args...),
		Env:    os.Environ(),
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		cleanup()
		return nil, unavailable(err)
	}
	if err := evalSource(ctx, i, art); err != nil {
		cleanup()
		return nil, err
	}

	decls, err := compiler.Declarations(art.Blob)
	if err != nil {
		cleanup()
		return nil, zerr.With(domain.WrapKind(err, domain.ErrNotLoadable), "fingerprint", art.Fingerprint.String())
	}
	types, err := describe(i, art.Module, decls)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &Module{
		name:    art.Module,
		entry:   art.Entry,
		types:   types,
		interp:  i,
		cleanup: cleanup,
	}, nil
}

func unitOptions(req *domain.CompileRequest) compiler.UnitOptions {
	return compiler.UnitOptions{
		Package:     "main",
		FileName:    "gscript_" + rootName(req) + ".go",
		RenameEntry: true,
	}
}

func rootName(req *domain.CompileRequest) string {
	if req.RootTypeName != "" {
		return req.RootTypeName
	}
	return domain.DefaultRootTypeName
}

// compileSource runs the interpreter's front end. The interpreter panics on some
// unsupported constructs; those are reported like compile errors.
func compileSource(i *interp.Interpreter, src []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.New(fmt.Sprint(r))
		}
	}()
	_, err = i.Compile(string(src))
	return err
}

// evalSource runs package initialization. Panics raised by script initializers become
// script runtime errors.
func evalSource(ctx context.Context, i *interp.Interpreter, art *domain.Artifact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ScriptRuntimeError{Member: art.Module + ".init", Value: r}
		}
	}()

	_, err = i.EvalWithContext(ctx, string(art.Blob))
	if err == nil {
		return nil
	}
	var p interp.Panic
	if errors.As(err, &p) {
		return &domain.ScriptRuntimeError{Member: art.Module + ".init", Value: p.Value, Stack: string(p.Stack)}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return zerr.With(domain.WrapKind(err, domain.ErrCompile), "module", art.Module)
}

func unavailable(err error) error {
	return zerr.With(domain.WrapKind(err, domain.ErrBackendUnavailable), "backend", Name)
}
