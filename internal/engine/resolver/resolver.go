// Package resolver follows the import directives of an entry script and flattens
// the resulting graph into a compile request.
package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ScriptResolver = (*Resolver)(nil)

// Resolver builds compile requests. It caches parsed units by canonical path and is
// safe for concurrent use.
type Resolver struct {
	logger   ports.Logger
	packages ports.PackageResolver
	stater   ports.InputStater
	hasher   ports.Fingerprinter
	cfg      domain.ResolverConfig

	mu    sync.Mutex
	units map[string]*domain.SourceUnit
}

// New creates a Resolver.
func New(
	logger ports.Logger,
	packages ports.PackageResolver,
	stater ports.InputStater,
	hasher ports.Fingerprinter,
	cfg domain.ResolverConfig,
) *Resolver {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{domain.DefaultExtension}
	}
	return &Resolver{
		logger:   logger,
		packages: packages,
		stater:   stater,
		hasher:   hasher,
		cfg:      cfg,
		units:    make(map[string]*domain.SourceUnit),
	}
}

// pass holds the state of one resolution.
type pass struct {
	r    *Resolver
	opts ports.ResolveOptions

	req      *domain.CompileRequest
	visited  map[string]bool
	onStack  map[string]bool
	stack    []string
	extra    []string
	packages []string
	refs     map[string]bool
}

// Resolve follows entry's imports and returns the flattened request.
func (r *Resolver) Resolve(
	ctx context.Context,
	entry string,
	opts ports.ResolveOptions,
) (*domain.CompileRequest, error) {
	path, err := Canonical(entry)
	if err != nil {
		return nil, zerr.With(domain.WrapKind(err, domain.ErrScriptNotFound), "probed", entry)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, zerr.With(domain.Detail(domain.ErrScriptNotFound, entry), "probed", path)
	}

	p := &pass{
		r:       r,
		opts:    opts,
		req:     &domain.CompileRequest{},
		visited: make(map[string]bool),
		onStack: make(map[string]bool),
		refs:    make(map[string]bool),
	}
	p.extra = appendDirs(nil, opts.SearchDirs...)

	if err := p.visit(ctx, path); err != nil {
		return nil, err
	}
	p.extra = appendDirs(p.extra, r.cfg.SearchDirs...)

	if err := p.resolvePackages(ctx); err != nil {
		return nil, err
	}

	p.finish()
	return p.req, nil
}

// Invalidate drops the cached parse of path.
func (r *Resolver) Invalidate(path string) {
	if canonical, err := Canonical(path); err == nil {
		path = canonical
	}
	r.mu.Lock()
	delete(r.units, path)
	r.mu.Unlock()
}

// visit walks one unit in pre-order.
func (p *pass) visit(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unit, err := p.r.load(path)
	if err != nil {
		return err
	}

	p.visited[path] = true
	p.onStack[path] = true
	p.stack = append(p.stack, path)
	defer func() {
		p.stack = p.stack[:len(p.stack)-1]
		delete(p.onStack, path)
	}()

	p.req.Units = append(p.req.Units, unit)
	p.collect(unit)

	for _, imp := range unit.Directives.Imports {
		targets, err := p.probeImport(unit, imp)
		if err != nil {
			return err
		}
		for _, target := range targets {
			p.req.Edges = append(p.req.Edges, domain.ImportEdge{
				From:         path,
				To:           target.Path,
				RenameMap:    imp.RenameMap,
				PreserveMain: imp.PreserveMain,
			})
			if p.onStack[target.Path] {
				return p.cycleError(target.Path)
			}
			if p.visited[target.Path] {
				continue
			}
			if target.Placeholder != nil {
				p.visited[target.Path] = true
				p.req.Units = append(p.req.Units, target.Placeholder)
				continue
			}
			if err := p.visit(ctx, target.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// collect merges a unit's non-import directives into the request.
func (p *pass) collect(unit *domain.SourceUnit) {
	dir := filepath.Dir(unit.Path)
	set := unit.Directives
	entry := len(p.req.Units) == 1

	for _, d := range set.SearchDirs {
		p.extra = appendDirs(p.extra, absFrom(dir, d))
	}
	for _, ref := range set.References {
		p.addReference(dir, ref)
	}
	for _, pkg := range set.Packages {
		if !slices.Contains(p.packages, pkg) {
			p.packages = append(p.packages, pkg)
		}
	}
	p.req.CompilerOptions = append(p.req.CompilerOptions, set.CompilerOptions...)
	for _, res := range set.Resources {
		p.req.Resources = append(p.req.Resources, absFrom(dir, res))
	}
	if entry {
		p.req.Args = append(p.req.Args, set.Args...)
	}
	if p.req.Backend == "" && set.Engine != "" {
		p.req.Backend = set.Engine
	}
}

// addReference records a reference as a file when it names an existing path.
func (p *pass) addReference(dir, identity string) {
	if p.refs[identity] {
		return
	}
	p.refs[identity] = true

	ref := domain.Reference{Identity: identity}
	for _, candidate := range p.candidates(dir, identity) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		canonical, err := Canonical(candidate)
		if err != nil {
			continue
		}
		ref.Path = canonical
		if p.r.stater != nil {
			if mod, err := p.r.stater.NewestModTime(canonical); err == nil {
				ref.ModTime = mod
			}
		}
		break
	}
	p.req.References = append(p.req.References, ref)
}

// resolvePackages turns the collected package specs into references.
func (p *pass) resolvePackages(ctx context.Context) error {
	if len(p.packages) == 0 {
		return nil
	}
	if p.r.packages == nil {
		return zerr.With(domain.Detail(domain.ErrPackageResolution, "no package resolver configured"),
			"package", p.packages[0])
	}
	for _, spec := range p.packages {
		paths, err := p.r.packages.Resolve(ctx, spec)
		if err != nil {
			if !errors.Is(err, domain.ErrPackageResolution) {
				err = domain.WrapKind(err, domain.ErrPackageResolution)
			}
			return zerr.With(err, "package", spec)
		}
		p.req.Packages = append(p.req.Packages, spec)
		name, _, _ := strings.Cut(strings.TrimSpace(spec), "@")
		for _, path := range paths {
			ref := domain.Reference{Identity: name, Path: path}
			if p.r.stater != nil {
				if mod, err := p.r.stater.NewestModTime(path); err == nil {
					ref.ModTime = mod
				}
			}
			p.req.References = append(p.req.References, ref)
		}
	}
	return nil
}

// finish fills in the request-level fields.
func (p *pass) finish() {
	req := p.req
	if p.opts.Backend != "" {
		req.Backend = strings.ToLower(p.opts.Backend)
	}
	req.Target = p.opts.Target
	if req.Target == "" {
		req.Target = domain.TargetMemoryLibrary
	}
	req.RootTypeName = p.opts.RootTypeName
	if req.RootTypeName == "" {
		req.RootTypeName = domain.DefaultRootTypeName
	}
	req.Encoding = domain.DefaultEncoding
	req.SearchDirs = p.extra
}

// cycleError reports the import path from the first occurrence of dep back to dep.
func (p *pass) cycleError(dep string) error {
	start := slices.Index(p.stack, dep)
	if start < 0 {
		start = 0
	}
	names := make([]string, 0, len(p.stack)-start+1)
	for _, path := range p.stack[start:] {
		names = append(names, filepath.Base(path))
	}
	names = append(names, filepath.Base(dep))
	cyclePath := strings.Join(names, " -> ")

	return zerr.With(domain.Detail(domain.ErrCyclicImport, cyclePath), "cycle", cyclePath)
}

// Canonical returns the absolute, symlink-free, clean form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

func absFrom(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func appendDirs(dirs []string, add ...string) []string {
	for _, d := range add {
		if d == "" {
			continue
		}
		d = filepath.Clean(d)
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
