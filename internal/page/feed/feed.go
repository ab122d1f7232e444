// Package feed turns HTML files dropped into a directory into structural
// insertions on the page, standing in for scripts that add content to a
// live document.
package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/hlsync/internal/debounce"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

const DefaultSettle = 100 * time.Millisecond

// InsertFunc receives the content of one settled fragment file.
type InsertFunc func(ctx context.Context, name, fragment string) error

// FragmentFeed inserts each *.html file created in a directory exactly once,
// after writes to it have been quiet for the settle period.
type FragmentFeed struct {
	dir     string
	settle  time.Duration
	insert  InsertFunc
	logger  logging.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*debounce.Debouncer
	done    map[string]bool
	closed  bool
	wg      sync.WaitGroup
}

func New(dir string, settle time.Duration, insert InsertFunc, l logging.Logger) (*FragmentFeed, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &FragmentFeed{
		dir:     dir,
		settle:  settle,
		insert:  insert,
		logger:  l.With("module", "fragment_feed", "dir", dir),
		watcher: watcher,
		pending: make(map[string]*debounce.Debouncer),
		done:    make(map[string]bool),
	}, nil
}

// Run processes filesystem events until ctx is cancelled, then waits for
// in-flight insertions and closes the watcher.
func (f *FragmentFeed) Run(ctx context.Context) error {
	defer func() {
		f.mu.Lock()
		f.closed = true
		for _, d := range f.pending {
			d.Stop()
		}
		f.mu.Unlock()
		f.wg.Wait()
		_ = f.watcher.Close()
	}()

	f.logger.Info(ctx, "watching for fragments")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			f.handleEvent(ctx, event)

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Error(ctx, "watcher error", "error", err)
		}
	}
}

func (f *FragmentFeed) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".html") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done[event.Name] {
		return
	}
	d, ok := f.pending[event.Name]
	if !ok {
		d = debounce.New(f.settle)
		f.pending[event.Name] = d
	}
	name := event.Name
	d.Trigger(func() { f.process(ctx, name) })
}

func (f *FragmentFeed) process(ctx context.Context, path string) {
	f.mu.Lock()
	if f.closed || f.done[path] || ctx.Err() != nil {
		f.mu.Unlock()
		return
	}
	f.done[path] = true
	delete(f.pending, path)
	f.wg.Add(1)
	f.mu.Unlock()
	defer f.wg.Done()

	content, err := os.ReadFile(path)
	if err != nil {
		f.logger.Warn(ctx, "fragment unreadable", "file", path, "error", err)
		return
	}
	if err := f.insert(ctx, filepath.Base(path), string(content)); err != nil {
		f.logger.Warn(ctx, "fragment insertion failed", "file", path, "error", err)
		return
	}
	f.logger.Debug(ctx, "fragment inserted", "file", path, "bytes", len(content))
}

// Close releases the watcher of a feed that was never run.
func (f *FragmentFeed) Close() error {
	return f.watcher.Close()
}
