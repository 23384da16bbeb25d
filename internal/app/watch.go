package app

import (
	"context"
	"errors"
	"path/filepath"

	"go.trai.ch/gscript/internal/core/domain"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	RunOptions
	// CheckOnly reports diagnostics instead of running the script.
	CheckOnly bool
}

// Watch runs or checks script, then repeats whenever one of its sources changes, until
// ctx is done. Failures of a single cycle are logged and do not end the loop.
func (a *App) Watch(ctx context.Context, script string, opts WatchOptions) error {
	for {
		paths := a.cycle(ctx, script, opts)
		if ctx.Err() != nil {
			return nil
		}

		wctx, cancel := context.WithCancel(ctx)
		events, err := a.watcher.Watch(wctx, paths)
		if err != nil {
			cancel()
			return err
		}

		select {
		case <-ctx.Done():
			cancel()
			return nil
		case path, ok := <-events:
			if !ok {
				cancel()
				return nil
			}
			a.invalidate(path)
			for drained := false; !drained; {
				select {
				case more, ok := <-events:
					if !ok {
						drained = true
						continue
					}
					a.invalidate(more)
				default:
					drained = true
				}
			}
			cancel()
		}
	}
}

// cycle runs one iteration and returns the files to watch for the next one.
func (a *App) cycle(ctx context.Context, script string, opts WatchOptions) []string {
	paths := []string{script}
	if abs, err := filepath.Abs(script); err == nil {
		paths = []string{abs}
	}

	req, err := a.resolve(ctx, script, opts.BuildOptions)
	if err != nil {
		a.logger.Error(err)
		return paths
	}
	paths = req.Paths()

	if opts.CheckOnly {
		_, err = a.Check(ctx, script, opts.BuildOptions)
	} else {
		err = a.Run(ctx, script, opts.RunOptions)
	}
	switch {
	case err == nil:
		a.logger.Info("waiting for changes...")
	case errors.Is(err, context.Canceled):
	case errors.Is(err, domain.ErrCompile):
		a.logger.Warn("compilation failed, waiting for changes...")
	default:
		a.logger.Error(err)
	}
	return paths
}

func (a *App) invalidate(path string) {
	a.logger.Info("changed " + path)
	a.resolver.Invalidate(path)
}
