// Package watch turns filesystem events under the workspace into debounced
// "results may have changed" notifications.
package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a set of directories and signals on Changes once a burst
// of relevant events has settled for the debounce window.
type Watcher struct {
	fs       *fsnotify.Watcher
	filter   func(path string) bool
	debounce time.Duration
	log      *zap.Logger

	changes   chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

type Option func(*Watcher)

// WithFilter restricts notifications to events whose path satisfies keep.
// Directory creation always counts, since a new directory may hold logs.
func WithFilter(keep func(path string) bool) Option {
	return func(w *Watcher) {
		if keep != nil {
			w.filter = keep
		}
	}
}

// New starts watching dirs. Directories that do not exist are skipped.
func New(dirs []string, debounce time.Duration, log *zap.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = time.Millisecond
	}

	w := &Watcher{
		fs:       fsw,
		filter:   func(string) bool { return true },
		debounce: debounce,
		log:      log,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		w.add(dir)
	}

	go w.run()
	return w, nil
}

// Changes delivers one value per settled burst. It is closed by Close.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops the event loop and waits for it to exit. It is safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) add(dir string) {
	if err := w.fs.Add(dir); err != nil {
		w.log.Debug("not watching directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	w.log.Debug("watching directory", zap.String("dir", dir))
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.changes)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.add(event.Name)
			return true
		}
	}
	keep := w.filter(event.Name)
	w.log.Debug("watch event",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()),
		zap.Bool("relevant", keep))
	return keep
}
