// Package app implements the application layer for gscript.
package app

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/viper"
	"go.trai.ch/gscript/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/cache"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/gscript/internal/ui/output"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	resolver ports.ScriptResolver
	cache    *cache.Cache
	registry *compiler.Registry
	runner   ports.Runner
	watcher  ports.Watcher
	logger   ports.Logger
	tracer   ports.Tracer
	cfg      *domain.Config
	stdio    ports.Stdio
}

// New creates a new App instance.
func New(
	resolver ports.ScriptResolver,
	c *cache.Cache,
	registry *compiler.Registry,
	runner ports.Runner,
	watcher ports.Watcher,
	log ports.Logger,
	tracer ports.Tracer,
	cfg *domain.Config,
) *App {
	if cfg == nil {
		cfg = domain.DefaultConfig()
	}
	return &App{
		resolver: resolver,
		cache:    c,
		registry: registry,
		runner:   runner,
		watcher:  watcher,
		logger:   log,
		tracer:   tracer,
		cfg:      cfg,
		stdio:    ports.Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

// WithStdio replaces the streams scripts and diagnostics are attached to.
// This is primarily used for testing.
func (a *App) WithStdio(stdio ports.Stdio) *App {
	a.stdio = stdio
	return a
}

// BuildOptions configures how a script is resolved and compiled.
type BuildOptions struct {
	// Backend overrides the engine directive.
	Backend string
	// Target is the requested target kind. Empty lets the backend decide.
	Target domain.TargetKind
	// RootTypeName names the compiled unit.
	RootTypeName string
	// SearchDirs are probed after the importing file's directory.
	SearchDirs []string
	// Lenient assumes the default extension for unmatched imports.
	Lenient bool
	// Fresh bypasses the cache lookup.
	Fresh bool

	library bool
}

// Configure applies command line overrides to the effective configuration.
func (a *App) Configure(v *viper.Viper) error {
	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if err := config.ApplyOverlay(a.cfg, v, cwd); err != nil {
		return err
	}
	return config.Validate(a.cfg)
}

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	return a.tracer.Shutdown(ctx)
}

// Compile resolves and compiles script, reusing a cached artifact when possible.
// Diagnostics are written to stderr; a failed compilation returns domain.ErrCompile.
func (a *App) Compile(ctx context.Context, script string, opts BuildOptions) (*domain.CompileResult, error) {
	ctx, span := a.tracer.Start(ctx, "app.compile", ports.WithAttribute("script", script))
	defer span.End()

	_, res, err := a.build(ctx, script, opts)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// Check reports the diagnostics of script without producing an artifact.
func (a *App) Check(ctx context.Context, script string, opts BuildOptions) (domain.Diagnostics, error) {
	ctx, span := a.tracer.Start(ctx, "app.check", ports.WithAttribute("script", script))
	defer span.End()

	req, err := a.resolve(ctx, script, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	checker, err := a.registry.Checker(req.Backend, req.Target)
	if err != nil {
		return nil, err
	}
	diags, err := checker.Check(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	a.report(diags)
	if diags.HasErrors() {
		res := &domain.CompileResult{Diagnostics: diags}
		return diags, res.Err()
	}
	return diags, nil
}

func (a *App) resolve(ctx context.Context, script string, opts BuildOptions) (*domain.CompileRequest, error) {
	req, err := a.resolver.Resolve(ctx, script, ports.ResolveOptions{
		SearchDirs:   opts.SearchDirs,
		Lenient:      opts.Lenient,
		Backend:      opts.Backend,
		Target:       opts.Target,
		RootTypeName: opts.RootTypeName,
	})
	if err != nil {
		return nil, err
	}
	if opts.Target == "" {
		req.Target = a.defaultTarget(req.Backend, opts.library)
	}
	return req, nil
}

// defaultTarget keeps in-memory libraries unless the named backend cannot produce them.
func (a *App) defaultTarget(backend string, library bool) domain.TargetKind {
	if backend == "" {
		return domain.TargetMemoryLibrary
	}
	b, err := a.registry.Get(backend)
	if err != nil || b.Capabilities().Supports(domain.TargetMemoryLibrary) {
		return domain.TargetMemoryLibrary
	}
	if library {
		return domain.TargetDiskLibrary
	}
	return domain.TargetDiskExecutable
}

// build resolves and compiles script. An artifact whose file vanished after the lookup
// is evicted and compiled again once.
func (a *App) build(
	ctx context.Context,
	script string,
	opts BuildOptions,
) (*domain.CompileRequest, *domain.CompileResult, error) {
	req, err := a.resolve(ctx, script, opts)
	if err != nil {
		return nil, nil, err
	}
	backend, err := a.registry.Compiler(req.Backend, req.Target)
	if err != nil {
		return req, nil, err
	}

	res, err := a.cache.Compile(ctx, req, backend, cache.Options{Fresh: opts.Fresh})
	if err != nil {
		return req, nil, err
	}
	if err := a.cache.Verify(res.Artifact); errors.Is(err, domain.ErrArtifactVanished) {
		a.logger.Warn("cached artifact vanished, recompiling " + script)
		if err := a.cache.Evict(res.Artifact.Fingerprint); err != nil {
			return req, nil, err
		}
		if res, err = a.cache.Compile(ctx, req, backend, cache.Options{Fresh: true}); err != nil {
			return req, nil, err
		}
	}

	a.report(res.Diagnostics)
	return req, res, res.Err()
}

func (a *App) report(diags domain.Diagnostics) {
	if len(diags) == 0 {
		return
	}
	if err := output.Diagnostics(output.New(a.stdio.Stderr), diags); err != nil {
		a.logger.Error(err)
	}
}
