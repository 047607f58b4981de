package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Rebuilder re-runs the ingestion pipeline.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Watcher watches the fixed source-document path and triggers a rebuild on
// create or modify. Events are debounced because editors and uploads emit
// several write events per save.
type Watcher struct {
	path     string
	debounce time.Duration
	rebuild  Rebuilder
	logger   *zap.Logger

	fs   *fsnotify.Watcher
	done chan struct{}
}

func New(path string, debounce time.Duration, rebuild Rebuilder, logger *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the parent directory: the document may not exist yet, and
	// overwrites often replace the inode.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fs.Close()
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		rebuild:  rebuild,
		logger:   logger,
		fs:       fs,
		done:     make(chan struct{}),
	}, nil
}

// Run processes filesystem events until ctx is cancelled or Close is
// called.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.logger.Debug("document change detected", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("source document changed, rebuilding pipeline", zap.String("path", w.path))
			if err := w.rebuild.Rebuild(ctx); err != nil {
				w.logger.Error("watcher-triggered rebuild failed, keeping current pipeline", zap.Error(err))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
