// Package compiler selects backends and normalizes their diagnostics.
package compiler

import (
	"slices"
	"strings"
	"sync"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry holds the available backends in registration order.
type Registry struct {
	mu       sync.RWMutex
	backends []ports.Backend
	cfg      *domain.BackendConfig
}

// NewRegistry creates a Registry. cfg.Default names the backend used when a request
// names none; it is read at selection time.
func NewRegistry(cfg *domain.BackendConfig, backends ...ports.Backend) *Registry {
	if cfg == nil {
		cfg = &domain.BackendConfig{}
	}
	r := &Registry{cfg: cfg}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds b. A backend with the same name replaces the earlier one.
func (r *Registry) Register(b ports.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(b.Name()); i >= 0 {
		r.backends[i] = b
		return
	}
	r.backends = append(r.backends, b)
}

// Names returns the registered backend names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Get returns the backend registered as name.
func (r *Registry) Get(name string) (ports.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(name); i >= 0 {
		return r.backends[i], nil
	}
	return nil, r.unknown(name)
}

// Select returns the backend for a request naming name and asking for target.
// An explicit name that cannot produce target fails with domain.ErrUnsupportedBackend
// and names the backend that could. Without a name the configured default is preferred,
// then the first capable backend.
func (r *Registry) Select(name string, target domain.TargetKind) (ports.Backend, error) {
	if target == "" {
		target = domain.TargetMemoryLibrary
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		i := r.index(name)
		if i < 0 {
			return nil, r.unknown(name)
		}
		b := r.backends[i]
		if b.Capabilities().Supports(target) {
			return b, nil
		}
		err := zerr.With(domain.Detail(domain.ErrUnsupportedBackend, b.Name()+" cannot produce "+string(target)),
			"backend", b.Name())
		err = zerr.With(err, "target", string(target))
		if capable := r.capable(target); capable != nil {
			err = zerr.With(err, "required", capable.Name())
		}
		return nil, err
	}

	if i := r.index(r.cfg.Default); i >= 0 && r.backends[i].Capabilities().Supports(target) {
		return r.backends[i], nil
	}
	if capable := r.capable(target); capable != nil {
		return capable, nil
	}
	return nil, zerr.With(domain.Detail(domain.ErrTargetNotSupported, string(target)), "target", string(target))
}

// Compiler selects a backend and requires it to compile.
func (r *Registry) Compiler(name string, target domain.TargetKind) (ports.Compiler, error) {
	b, err := r.Select(name, target)
	if err != nil {
		return nil, err
	}
	c, ok := b.(ports.Compiler)
	if !ok {
		return nil, missing(b, "compile")
	}
	return c, nil
}

// Checker selects a backend and requires it to check without producing output.
func (r *Registry) Checker(name string, target domain.TargetKind) (ports.Checker, error) {
	b, err := r.Select(name, target)
	if err != nil {
		return nil, err
	}
	c, ok := b.(ports.Checker)
	if !ok {
		return nil, missing(b, "check")
	}
	return c, nil
}

// Loader returns the loader of the backend that produced art.
func (r *Registry) Loader(art *domain.Artifact) (ports.Loader, error) {
	b, err := r.Get(art.Backend)
	if err != nil {
		return nil, err
	}
	l, ok := b.(ports.Loader)
	if !ok {
		return nil, zerr.With(domain.Detail(domain.ErrNotLoadable, b.Name()), "target", string(art.Target))
	}
	return l, nil
}

func (r *Registry) index(name string) int {
	name = strings.ToLower(name)
	return slices.IndexFunc(r.backends, func(b ports.Backend) bool {
		return b.Name() == name
	})
}

func (r *Registry) capable(target domain.TargetKind) ports.Backend {
	for _, b := range r.backends {
		if b.Capabilities().Supports(target) {
			return b
		}
	}
	return nil
}

func (r *Registry) unknown(name string) error {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	err := zerr.With(domain.Detail(domain.ErrUnsupportedBackend, name), "backend", name)
	return zerr.With(err, "available", strings.Join(names, ", "))
}

func missing(b ports.Backend, capability string) error {
	err := zerr.With(domain.Detail(domain.ErrUnsupportedBackend, b.Name()+" cannot "+capability), "backend", b.Name())
	return zerr.With(err, "capability", capability)
}
