// Package watcher reports content changes of a single file.
package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       *sync.Mutex
	logger   *zap.Logger
	path     string
	debounce time.Duration
	onChange func(path string)
	hash     uint64
	hashed   bool
}

// Watcher calls a function when a file's content changes.
//
// Editors and exporters often write a file in several steps, so events are debounced
// and the content is hashed; the callback only fires when the hash differs from the
// last one seen. Removing the file does not fire the callback.
type Watcher interface {
	// Run watches until ctx ends. It blocks.
	//
	// Parameters:
	//   - ctx: stops the watcher when done
	//
	// Returns:
	//   - error: an error if the watch could not be set up
	Run(ctx context.Context) error

	// Hash returns the content hash last seen.
	//
	// Returns:
	//   - uint64: the xxhash of the file content
	//   - bool: false if the file has not been read successfully yet
	Hash() (uint64, bool)
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher for path. The current content is hashed immediately
// so an unchanged rewrite does not trigger onChange.
//
// Parameters:
//   - path: the file to watch
//   - onChange: called with path after each content change
//   - options: variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the watcher
func NewWatcher(path string, onChange func(path string), options ...WatcherBuilderOption) Watcher {
	w := &watcher{
		mu:       &sync.Mutex{},
		logger:   zap.NewNop(),
		path:     filepath.Clean(path),
		debounce: 250 * time.Millisecond,
		onChange: onChange,
	}
	for _, opt := range options {
		opt(w)
	}

	if h, err := hashFile(w.path); err == nil {
		w.hash, w.hashed = h, true
	}
	return w
}

func (w *watcher) Hash() (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hash, w.hashed
}

func (w *watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: atomic saves replace the file and drop a file-level watch.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching model", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.check()
		}
	}
}

// check rehashes the file and fires onChange if the content moved.
func (w *watcher) check() {
	h, err := hashFile(w.path)
	if err != nil {
		w.logger.Debug("model not readable", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	changed := !w.hashed || h != w.hash
	w.hash, w.hashed = h, true
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.Info("model changed", zap.String("path", w.path), zap.Uint64("hash", h))
	if w.onChange != nil {
		w.onChange(w.path)
	}
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}
