package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event is a wrapper around fsnotify.Event
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher reports debounced filesystem changes under a set of directories.
type Watcher struct {
	watcher  *fsnotify.Watcher
	lg       *zap.Logger
	Dirs     []string
	Debounce time.Duration
	OnEvent  func(Event)
}

// New creates a new watcher for the specified directories
func New(dirs []string, debounce time.Duration, onEvent func(Event)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		lg:       zap.L().Named("watch"),
		Dirs:     dirs,
		Debounce: debounce,
		OnEvent:  onEvent,
	}, nil
}

// Start watches until ctx is done or the underlying watcher is closed.
// The watcher cannot be restarted afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	for _, dir := range w.Dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := w.addTree(dir); err != nil {
			w.lg.Warn("walk failed", zap.String("dir", dir), zap.Error(err))
		}
	}

	w.lg.Debug("watching for changes", zap.Strings("dirs", w.Dirs))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.lg.Warn("watch new dir", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}

			if timer != nil {
				timer.Stop()
			}
			ev := Event{Name: event.Name, Op: event.Op}
			timer = time.AfterFunc(w.Debounce, func() {
				w.OnEvent(ev)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.lg.Warn("watcher error", zap.Error(err))
		}
	}
}

// addTree watches root and every non-hidden directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
