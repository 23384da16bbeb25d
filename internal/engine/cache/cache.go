// Package cache decides whether a compile request can reuse a stored artifact and
// coordinates compilations so that one fingerprint is compiled at most once at a time.
package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Options controls a single Compile call.
type Options struct {
	// NoSingleFlight compiles even if the same fingerprint is already in flight.
	NoSingleFlight bool
	// Fresh skips the lookup. The result is still stored.
	Fresh bool
}

// Cache fronts an artifact store with an in-memory tier and single-flight compilation.
type Cache struct {
	store         ports.ArtifactStore
	fingerprinter ports.Fingerprinter
	logger        ports.Logger
	tracer        ports.Tracer
	cfg           *domain.CacheConfig
	now           func() time.Time

	group singleflight.Group

	mu     sync.RWMutex
	memory map[domain.Fingerprint]*domain.Artifact
}

// New creates a Cache. cfg is read on every call so later changes take effect.
func New(
	store ports.ArtifactStore,
	fingerprinter ports.Fingerprinter,
	logger ports.Logger,
	tracer ports.Tracer,
	cfg *domain.CacheConfig,
) *Cache {
	if cfg == nil {
		cfg = &domain.CacheConfig{}
	}
	return &Cache{
		store:         store,
		fingerprinter: fingerprinter,
		logger:        logger,
		tracer:        tracer,
		cfg:           cfg,
		now:           time.Now,
		memory:        make(map[domain.Fingerprint]*domain.Artifact),
	}
}

// Fingerprint returns the cache key of req.
func (c *Cache) Fingerprint(req *domain.CompileRequest) (domain.Fingerprint, error) {
	return c.fingerprinter.Fingerprint(req)
}

// Lookup returns the artifact stored for fp if it is still valid for req.
// Unreadable records are reported as misses.
func (c *Cache) Lookup(ctx context.Context, fp domain.Fingerprint, req *domain.CompileRequest) (*domain.Artifact, bool) {
	if c.cfg.Disabled {
		return nil, false
	}
	_, span := c.tracer.Start(ctx, "cache.lookup", ports.WithAttribute("fingerprint", fp.String()))
	defer span.End()

	c.mu.RLock()
	art, ok := c.memory[fp]
	c.mu.RUnlock()
	if ok && c.valid(art, fp, req) {
		span.SetAttribute("tier", "memory")
		return art, true
	}

	art, err := c.store.Get(fp)
	if err != nil {
		c.logger.Warn("ignoring unreadable cache record " + fp.String() + ": " + err.Error())
		return nil, false
	}
	if art == nil || !c.valid(art, fp, req) {
		span.SetAttribute("hit", false)
		return nil, false
	}

	c.remember(art)
	span.SetAttribute("tier", "disk")
	return art, true
}

// valid applies the hit policy: same fingerprint, backing content present and
// not older than the newest input.
func (c *Cache) valid(art *domain.Artifact, fp domain.Fingerprint, req *domain.CompileRequest) bool {
	if art.Fingerprint != fp {
		return false
	}
	if req != nil && req.Backend != "" && art.Backend != "" && art.Backend != req.Backend {
		return false
	}
	if art.Path != "" {
		info, err := os.Stat(art.Path)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	} else if len(art.Blob) == 0 {
		return false
	}
	if req != nil && art.CreatedAt.Before(req.NewestInput()) {
		return false
	}
	return true
}

// Store persists art and records it in the memory tier.
// On return art points at its stored location.
func (c *Cache) Store(ctx context.Context, art *domain.Artifact) error {
	if c.cfg.Disabled {
		return nil
	}
	_, span := c.tracer.Start(ctx, "cache.store", ports.WithAttribute("fingerprint", art.Fingerprint.String()))
	defer span.End()

	stored, err := c.store.Put(art)
	if err != nil {
		span.RecordError(err)
		return err
	}
	*art = *stored
	c.remember(stored)
	return nil
}

// Compile returns a cached artifact for req or compiles it with backend.
// The fingerprint covers the backend that compiles, not only the one req names.
// Failed and cancelled compilations are never stored.
func (c *Cache) Compile(
	ctx context.Context,
	req *domain.CompileRequest,
	backend ports.Compiler,
	opts Options,
) (*domain.CompileResult, error) {
	if req.Backend != backend.Name() {
		selected := *req
		selected.Backend = backend.Name()
		req = &selected
	}
	fp, err := c.Fingerprint(req)
	if err != nil {
		return nil, err
	}

	if !opts.Fresh {
		if art, ok := c.Lookup(ctx, fp, req); ok {
			return hit(art), nil
		}
	}

	run := func() (any, error) {
		if !opts.Fresh {
			if art, ok := c.Lookup(ctx, fp, req); ok {
				return hit(art), nil
			}
		}
		return c.compile(ctx, fp, req, backend)
	}

	if opts.NoSingleFlight {
		res, err := run()
		if err != nil {
			return nil, err
		}
		return res.(*domain.CompileResult), nil
	}

	ch := c.group.DoChan(fp.String(), run)
	select {
	case <-ctx.Done():
		return nil, zerr.With(domain.WrapKind(ctx.Err(), domain.ErrCompileCancelled), "fingerprint", fp.String())
	case res := <-ch:
		if res.Err != nil && res.Shared && errors.Is(res.Err, domain.ErrCompileCancelled) && ctx.Err() == nil {
			// The caller that started the shared compile was cancelled; this one was not.
			c.logger.Warn("shared compile of " + fp.String() + " was cancelled, compiling again")
			retry, err := run()
			if err != nil {
				return nil, err
			}
			return retry.(*domain.CompileResult), nil
		}
		if res.Err != nil {
			return nil, res.Err
		}
		shared := *res.Val.(*domain.CompileResult)
		return &shared, nil
	}
}

func (c *Cache) compile(
	ctx context.Context,
	fp domain.Fingerprint,
	req *domain.CompileRequest,
	backend ports.Compiler,
) (*domain.CompileResult, error) {
	ctx, span := c.tracer.Start(ctx, "cache.compile",
		ports.WithAttribute("fingerprint", fp.String()),
		ports.WithAttribute("backend", backend.Name()),
	)
	defer span.End()

	var staging string
	if req.Target.OnDisk() {
		dir, err := c.store.Stage()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		staging = dir
	}
	discard := func() {
		if staging != "" {
			_ = os.RemoveAll(staging)
		}
	}

	result, err := backend.Compile(ctx, req, ports.CompileOptions{StagingDir: staging, Fingerprint: fp})
	if err != nil {
		discard()
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, domain.ErrCompileCancelled) {
			err = domain.WrapKind(err, domain.ErrCompileCancelled)
		}
		span.RecordError(err)
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		discard()
		return nil, zerr.With(domain.WrapKind(ctxErr, domain.ErrCompileCancelled), "fingerprint", fp.String())
	}
	if !result.Success || result.Artifact == nil {
		discard()
		span.SetAttribute("success", false)
		return result, nil
	}

	art := result.Artifact
	art.Fingerprint = fp
	art.Backend = backend.Name()
	art.Target = req.Target
	if art.CreatedAt.IsZero() {
		art.CreatedAt = c.now()
	}
	if art.Args == nil {
		art.Args = req.Args
	}
	if art.Diagnostics == nil {
		art.Diagnostics = result.Diagnostics
	}

	if err := c.Store(ctx, art); err != nil {
		discard()
		return nil, err
	}
	span.SetAttribute("success", true)
	return result, nil
}

// Verify reports domain.ErrArtifactVanished if art's backing file disappeared.
func (c *Cache) Verify(art *domain.Artifact) error {
	if art == nil || art.Path == "" {
		return nil
	}
	if _, err := os.Stat(art.Path); err != nil {
		return zerr.With(domain.WrapKind(err, domain.ErrArtifactVanished), "fingerprint", art.Fingerprint.String())
	}
	return nil
}

// Evict drops the artifact for fp from both tiers.
func (c *Cache) Evict(fp domain.Fingerprint) error {
	c.mu.Lock()
	delete(c.memory, fp)
	c.mu.Unlock()
	return c.store.Remove(fp)
}

// List returns every stored artifact.
func (c *Cache) List() ([]*domain.Artifact, error) {
	return c.store.List()
}

// Clean removes every artifact from both tiers.
func (c *Cache) Clean() error {
	c.mu.Lock()
	clear(c.memory)
	c.mu.Unlock()
	return c.store.Clean()
}

func (c *Cache) remember(art *domain.Artifact) {
	c.mu.Lock()
	c.memory[art.Fingerprint] = art
	c.mu.Unlock()
}

func hit(art *domain.Artifact) *domain.CompileResult {
	return &domain.CompileResult{
		Success:     true,
		Diagnostics: art.Diagnostics,
		Artifact:    art,
		Cached:      true,
	}
}
