// Package watcher observes the template source file on disk so edits made
// in an external editor flow into the running session. Rapid write bursts
// (editors often truncate-then-write) are debounced into a single reload.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler receives the new file contents after a debounced change.
type ReloadHandler func(contents string)

// FileWatcher watches a single template file with debouncing.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	delay     time.Duration
	handlers  []ReloadHandler
	mu        sync.Mutex
	timer     *time.Timer
}

// New creates a watcher for the given file. The containing directory is
// watched rather than the file itself so rename-based saves keep working.
func New(path string, debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &FileWatcher{watcher: w, path: abs, delay: debounce}, nil
}

// OnReload registers a handler invoked with the file's new contents.
func (fw *FileWatcher) OnReload(handler ReloadHandler) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// Start processes filesystem events until ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			fw.Close()
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			fw.scheduleReload()
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	match, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return match == fw.path
}

func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.delay, fw.fireReload)
}

func (fw *FileWatcher) fireReload() {
	contents, err := os.ReadFile(fw.path)
	if err != nil {
		return // mid-save; the next event retries
	}
	fw.mu.Lock()
	handlers := make([]ReloadHandler, len(fw.handlers))
	copy(handlers, fw.handlers)
	fw.mu.Unlock()
	for _, handler := range handlers {
		handler(string(contents))
	}
}
