package ports

import "context"

// Watcher reports changes to source files.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch delivers the canonical path of every changed file until ctx is done.
	// Bursts of events for the same file are coalesced.
	Watch(ctx context.Context, paths []string) (<-chan string, error)
}
