package preview

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/output"
)

// defaultDebounce is how long the sources must be quiet before a rebuild.
const defaultDebounce = 300 * time.Millisecond

// Watcher calls a rebuild function after Markdown files under a directory
// change. Bursts of events, such as an editor's save sequence, collapse
// into one rebuild.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	rebuild  func() error
	log      *zap.Logger
	debounce time.Duration
	pending  bool
	lastSeen time.Time
	rebuilds int
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for dir. It does nothing until Start.
func NewWatcher(dir string, rebuild func() error, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to create file watcher", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		rebuild:  rebuild,
		log:      log,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period before a rebuild. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Rebuilds returns how many rebuilds have run.
func (w *Watcher) Rebuilds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rebuilds
}

// Start watches dir and its subdirectories in a background goroutine. When
// the directory cannot be watched the watcher is closed and Stop does
// nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		if cerr := w.watcher.Close(); cerr != nil {
			w.log.Warn("closing file watcher", zap.Error(cerr))
		}
		return output.NewIOError("failed to watch "+w.dir, err)
	}
	w.log.Debug("watching sources", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.log.Warn("watching new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	w.log.Debug("source changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	w.mu.Lock()
	w.pending = true
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

// flush runs the rebuild once events have been quiet for the debounce period.
func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastSeen) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	err := w.rebuild()

	w.mu.Lock()
	w.rebuilds++
	w.mu.Unlock()
	if err != nil {
		w.log.Warn("rebuild after change failed", zap.Error(err))
	}
}
