// Package watch re-runs a batch whenever a watched source or index file
// changes, with debouncing so edit bursts trigger a single run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches file events that arrive close together.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors a project root for changes to files matching the given
// glob patterns.
type Watcher struct {
	root     string
	include  []string
	debounce time.Duration
	onChange func(paths []string)

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a watcher for root. onChange receives the debounced set of
// changed paths.
func New(root string, include []string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		include:  include,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run adds watches for every directory under the root and processes events
// until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
		}
	}

	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		w.onChange(paths)
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.include {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched || matchesIndexFile(pattern, rel) {
			return true
		}
	}
	return false
}

// matchesIndexFile also accepts index files paired with a matching source.
func matchesIndexFile(pattern, rel string) bool {
	const suffix = ".index.json"
	if len(rel) <= len(suffix) || rel[len(rel)-len(suffix):] != suffix {
		return false
	}
	matched, err := doublestar.Match(pattern, rel[:len(rel)-len(suffix)])
	return err == nil && matched
}
