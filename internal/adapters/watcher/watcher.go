// Package watcher reports changes to script sources using fsnotify.
package watcher

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 16

// Watcher implements ports.Watcher. It watches the parent directories of the given
// files so that editors replacing a file by rename are still observed.
type Watcher struct {
	logger ports.Logger
	window time.Duration
}

// NewWatcher creates a new Watcher with the default debounce window.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{logger: logger, window: DefaultDebounceWindow}
}

// WithWindow returns a copy of w using the given debounce window.
func (w *Watcher) WithWindow(window time.Duration) *Watcher {
	return &Watcher{logger: w.logger, window: window}
}

// Watch delivers changed paths until ctx is done, then closes the channel.
func (w *Watcher) Watch(ctx context.Context, paths []string) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}

	files := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", p)
		}
		files[abs] = struct{}{}
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "dir", dir)
		}
	}

	out := make(chan string, eventChannelBuffer)
	var sendMu sync.Mutex
	closed := false

	debouncer := NewDebouncer(w.window, func(changed []string) {
		sendMu.Lock()
		defer sendMu.Unlock()
		for _, p := range changed {
			if closed {
				return
			}
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	})

	go func() {
		defer func() {
			debouncer.Stop()
			_ = fsw.Close()
			sendMu.Lock()
			closed = true
			close(out)
			sendMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				name := filepath.Clean(event.Name)
				if _, watched := files[name]; watched {
					debouncer.Add(name)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher: " + err.Error())
			}
		}
	}()

	return out, nil
}
