// Package watch observes directories for filesystem changes and delivers
// debounced notifications, either per configured glob or as a single
// aggregate "something changed" signal across many directories.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiescence interval used when a Watch or
// AggregateWatch does not configure one explicitly.
const DefaultDebounce = 50 * time.Millisecond

// changeOps is the set of fsnotify operations that constitute a content
// change worth reporting; metadata-only events are ignored.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// watch is one (root, glob, callback) registration.
type watch struct {
	root     string
	glob     string
	debounce time.Duration
	onChange func(path string)
	timer    *time.Timer
}

// Watcher is a long-lived singleton that multiplexes filesystem events
// across any number of registered watches. Its lifetime is bounded by
// whoever constructs it (typically the engine facade); call Stop to
// release the underlying OS watch and stop the event loop.
//
// All callbacks run on the watcher's own goroutine; handlers must be
// non-blocking or hand work off to another goroutine.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	watches []*watch

	aggRoots    []string
	aggDebounce time.Duration
	aggCallback func()
	aggTimer    *time.Timer

	done chan struct{}
	once sync.Once
}

// New creates a Watcher. Call Watch and/or AggregateWatch to register
// interest, then Start to begin the event loop.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	return &Watcher{fsw: fsw, done: make(chan struct{})}, nil
}

// Watch registers root (watched recursively) with a glob filter applied to
// the changed path's base name; an empty glob matches every path. onChange
// is invoked with the full changed path after debounce of quiescence (zero
// uses DefaultDebounce). Nonexistent roots are logged and skipped, not
// fatal; a root created later is not added by the Watcher itself.
func (w *Watcher) Watch(root, glob string, debounce time.Duration, onChange func(path string)) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w.mu.Lock()
	w.watches = append(w.watches, &watch{root: root, glob: glob, debounce: debounce, onChange: onChange})
	w.mu.Unlock()
	w.addRoot(root)
}

// AggregateWatch registers interest in many directories with a single
// "something changed" callback, used by the markdown content watcher where
// individual file identity doesn't matter to the caller. Only one
// aggregate registration is supported per Watcher.
func (w *Watcher) AggregateWatch(roots []string, debounce time.Duration, onChange func()) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w.mu.Lock()
	w.aggRoots = roots
	w.aggDebounce = debounce
	w.aggCallback = onChange
	w.mu.Unlock()
	for _, r := range roots {
		w.addRoot(r)
	}
}

// addRoot adds root and, if it is a directory, every subdirectory beneath
// it to the underlying fsnotify watch set. A root that does not exist on
// disk is logged and skipped.
func (w *Watcher) addRoot(root string) {
	info, err := os.Stat(root)
	if err != nil {
		log.Printf("watch: skipping nonexistent path %s: %v", root, err)
		return
	}
	if !info.IsDir() {
		if err := w.fsw.Add(root); err != nil {
			log.Printf("watch: failed to watch %s: %v", root, err)
		}
		return
	}
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				log.Printf("watch: failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("watch: failed to walk %s: %v", root, err)
	}
}

// Start runs the event loop. It blocks until Stop is called or the
// underlying watcher's event channel closes.
func (w *Watcher) Start() error {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: watcher error: %v", err)

		case <-w.done:
			w.mu.Lock()
			for _, wt := range w.watches {
				if wt.timer != nil {
					wt.timer.Stop()
				}
			}
			if w.aggTimer != nil {
				w.aggTimer.Stop()
			}
			w.mu.Unlock()
			return w.fsw.Close()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&changeOps == 0 {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRoot(event.Name)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, wt := range w.watches {
		if !within(wt.root, event.Name) {
			continue
		}
		if wt.glob != "" {
			matched, err := filepath.Match(wt.glob, filepath.Base(event.Name))
			if err != nil || !matched {
				continue
			}
		}
		path := event.Name
		cb := wt.onChange
		if wt.timer != nil {
			wt.timer.Stop()
		}
		wt.timer = time.AfterFunc(wt.debounce, func() { cb(path) })
	}

	if w.aggCallback != nil {
		for _, root := range w.aggRoots {
			if within(root, event.Name) {
				if w.aggTimer != nil {
					w.aggTimer.Stop()
				}
				cb := w.aggCallback
				w.aggTimer = time.AfterFunc(w.aggDebounce, cb)
				break
			}
		}
	}
}

// within reports whether path is root itself or lives beneath it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (len(rel) > 0 && rel[0] != '.' && !filepath.IsAbs(rel))
}

// Stop halts the event loop and releases the underlying OS watch. Stop is
// idempotent and safe to call from any goroutine.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
