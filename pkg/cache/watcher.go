package cache

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jnproject/jn/internal/obslog"
	"github.com/jnproject/jn/pkg/plugin"
)

// Watcher watches plugin discovery directories and invalidates the on-disk
// cache the moment a plugin file changes, rather than relying solely on the
// next invocation's mtime check ("jn plugins watch").
//
// An fsnotify.Watcher is wrapped with a start/stop lifecycle and an event
// loop selecting on Events/Errors/stop. There is no debounce batching or
// repair logic here: invalidation is a single idempotent Remove, so
// coalescing rapid events buys nothing.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cache   *Cache
	log     *obslog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher returns a Watcher that invalidates cache when any file under
// dirs changes. log may be nil.
func NewWatcher(cache *Cache, dirs []plugin.Dir, log *obslog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		// A tier directory that doesn't exist yet is not fatal: it may be
		// created later, and other tiers still get watched.
		_ = fw.Add(d.Path)
	}
	return &Watcher{
		watcher: fw,
		cache:   cache,
		log:     log,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Non-blocking.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
}

// Stop stops the watcher and waits for its goroutine to exit.
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
	_ = w.watcher.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
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
			w.logger().Warn().Err(err).Msg("cache: watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger().Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("cache: plugin file changed, invalidating cache")
	w.cache.Invalidate()
}

func (w *Watcher) logger() *obslog.Logger {
	if w.log != nil {
		return w.log
	}
	return obslog.Get()
}

// WatchedDirs returns the directories currently under watch, for
// diagnostics ("jn plugins watch" prints them when it starts).
func (w *Watcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}
