// Package watch implements the CLI's watch mode: it monitors a PKG file
// or a source tree directory for changes and debounces them into a
// single callback, used by the unpack and pack commands when watching
// is enabled in the project configuration.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors root (a single file, or a directory and its
// subdirectories), calling OnChange once
// per debounce window after one or more files settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	exclude  []string
	debounce time.Duration
	root     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer

	OnChange func(paths []string)
	OnError  func(err error)
}

// New builds a Watcher rooted at root. exclude is a set of doublestar
// glob patterns (matched against paths relative to root) for
// directories and files that shouldn't trigger a rebuild — build
// output, VCS metadata, editor swap files.
func New(root string, exclude []string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		watcher:  fw,
		exclude:  exclude,
		debounce: debounce,
		root:     root,
		pending:  make(map[string]bool),
	}, nil
}

// Start adds recursive watches under the configured root and begins
// processing events in the background. Call Stop to shut down.
func (w *Watcher) Start() error {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("adding watches under %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.run()

	return nil
}

// Stop cancels event processing and closes the underlying fsnotify
// watcher, waiting for the processing goroutine to exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return w.watcher.Add(root)
	}
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err == nil {
			if visited[real] {
				return filepath.SkipDir
			}
			visited[real] = true
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("watch: failed to add %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(pending) == 0 || w.OnChange == nil {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	w.OnChange(paths)
}
