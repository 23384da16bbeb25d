package ports

import "go.trai.ch/gscript/internal/core/domain"

// ArtifactStore persists compiled artifacts keyed by fingerprint.
// It may be shared by several processes; every write is atomic.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// Get returns the artifact record for fp.
	// Returns nil, nil if not found.
	Get(fp domain.Fingerprint) (*domain.Artifact, error)

	// Put persists art. On-disk artifacts are moved from their staging path into the store
	// and the returned artifact points at the final location.
	Put(art *domain.Artifact) (*domain.Artifact, error)

	// Stage creates a fresh directory on the store's filesystem for a backend to write into.
	Stage() (string, error)

	// Remove evicts the artifact for fp. Removing a missing artifact is not an error.
	Remove(fp domain.Fingerprint) error

	// List returns every readable artifact record.
	List() ([]*domain.Artifact, error)

	// Clean removes every artifact.
	Clean() error
}
