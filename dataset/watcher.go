package dataset

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the usage table when the CSV changes on disk, so the
// dataset can be refreshed without restarting the service.
type Watcher struct {
	path    string
	store   *Store
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher watches the directory containing path. Watching the
// directory instead of the file survives editors that replace the file
// on save.
func NewWatcher(path string, store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{path: path, store: store, watcher: fsw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			table, err := LoadCSV(w.path)
			if err != nil {
				zap.S().Errorw("dataset reload failed", "path", w.path, "error", err)
				continue
			}
			w.store.Swap(table)
			zap.S().Infow("dataset reloaded", "path", w.path, "rows", table.NumRows())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.S().Errorw("dataset watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
