package auth

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bilgisen/veritas/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the token file made by any process.
// It watches the parent directory because the file is replaced by rename.
type Watcher struct {
	path string
	fs   *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. The directory is
// created when missing.
func NewWatcher(path string) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create token watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{path: filepath.Clean(path), fs: fw}, nil
}

// Changes emits once per change of the token file until ctx is done or the
// watcher is closed. Bursts are coalesced: a pending notification is not duplicated.
func (w *Watcher) Changes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	log := logger.Component("auth.watcher")

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				log.Debug().Str("event", ev.Op.String()).Msg("token file changed")
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("token watcher error")
			}
		}
	}()
	return out
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
