// Package invoke exposes a loaded module through name-based member resolution,
// deterministic overload dispatch and cached invokers.
package invoke

import (
	"sync"
	"sync/atomic"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var generations atomic.Uint64

// LoadContext exclusively owns one loaded module. Unloading it retires its generation,
// and every handle derived from it fails with domain.ErrContextUnloaded afterwards.
type LoadContext struct {
	mu         sync.RWMutex
	module     ports.Module
	generation uint64
	retired    bool
}

// NewLoadContext takes ownership of m.
func NewLoadContext(m ports.Module) *LoadContext {
	return &LoadContext{module: m, generation: generations.Add(1)}
}

// Generation identifies this context among all contexts created by the process.
func (c *LoadContext) Generation() uint64 {
	return c.generation
}

// Module returns the owned module.
func (c *LoadContext) Module() (ports.Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.retired {
		return nil, c.unloaded()
	}
	return c.module, nil
}

// Unloaded reports whether Unload was called.
func (c *LoadContext) Unloaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.retired
}

// Unload closes the module. Calling it again is a no-op.
func (c *LoadContext) Unload() error {
	c.mu.Lock()
	if c.retired {
		c.mu.Unlock()
		return nil
	}
	c.retired = true
	m := c.module
	c.module = nil
	c.mu.Unlock()

	return m.Close()
}

// check fails unless gen is this context's live generation.
func (c *LoadContext) check(gen uint64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.retired || gen != c.generation {
		return c.unloaded()
	}
	return nil
}

func (c *LoadContext) unloaded() error {
	return zerr.With(domain.Detail(domain.ErrContextUnloaded, ""), "generation", c.generation)
}
