package app

import (
	"context"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

// CacheList returns every stored artifact.
func (a *App) CacheList(_ context.Context) ([]*domain.Artifact, error) {
	return a.cache.List()
}

// CacheEvict removes the artifacts whose fingerprints start with one of prefixes and
// returns the evicted fingerprints.
func (a *App) CacheEvict(_ context.Context, prefixes []string) ([]domain.Fingerprint, error) {
	arts, err := a.cache.List()
	if err != nil {
		return nil, err
	}

	var evicted []domain.Fingerprint
	for _, prefix := range prefixes {
		matched := false
		for _, art := range arts {
			if !strings.HasPrefix(art.Fingerprint.String(), prefix) {
				continue
			}
			matched = true
			if err := a.cache.Evict(art.Fingerprint); err != nil {
				return evicted, err
			}
			evicted = append(evicted, art.Fingerprint)
		}
		if !matched {
			a.logger.Warn("no cached artifact matches " + prefix)
		}
	}
	return evicted, nil
}

// CacheClean removes every stored artifact.
func (a *App) CacheClean(_ context.Context) error {
	a.logger.Info("removing compiled artifacts...")
	if err := a.cache.Clean(); err != nil {
		return zerr.With(err, "dir", a.cfg.Cache.Dir)
	}
	a.logger.Info("removed compiled artifacts")
	return nil
}
