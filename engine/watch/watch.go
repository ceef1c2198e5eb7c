// Package watch reports changes to model files on disk.
package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before a change is reported.
// Exporters usually write a model in several bursts.
const DefaultSettle = 200 * time.Millisecond

type watcherImpl struct {
	mu *sync.Mutex

	fs     *fsnotify.Watcher
	done   chan struct{}
	closed bool

	// files maps a cleaned file path to the directory watched for it
	files map[string]string
	dirs  map[string]int

	settle   time.Duration
	timers   map[string]*pending
	onChange func(path string)
}

// pending is one scheduled report. Its address identifies the latest change to a file.
type pending struct {
	timer *time.Timer
}

// Watcher calls back when a watched file is written, created or renamed into place.
// It watches the containing directory so editors that replace files atomically are
// still seen.
type Watcher interface {
	// Watch starts reporting changes to path.
	//
	// Parameters:
	//   - path: the file to watch
	//
	// Returns:
	//   - error: error if the directory cannot be watched
	Watch(path string) error

	// Unwatch stops reporting changes to path.
	//
	// Parameters:
	//   - path: the file to stop watching
	Unwatch(path string)

	// Close stops the watcher. Pending notifications are dropped.
	//
	// Returns:
	//   - error: error from the underlying watcher
	Close() error
}

var _ Watcher = &watcherImpl{}

// NewWatcher creates a Watcher that calls onChange, from its own goroutine, once per
// settled burst of changes to a watched file.
//
// Parameters:
//   - onChange: receives the path given to Watch
//   - options: variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the OS watcher cannot be created
func NewWatcher(onChange func(path string), options ...WatcherBuilderOption) (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	w := &watcherImpl{
		mu:       &sync.Mutex{},
		fs:       fs,
		done:     make(chan struct{}),
		files:    make(map[string]string),
		dirs:     make(map[string]int),
		settle:   DefaultSettle,
		timers:   make(map[string]*pending),
		onChange: onChange,
	}
	for _, opt := range options {
		opt(w)
	}
	go w.loop()
	return w, nil
}

func (w *watcherImpl) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watch %s: watcher closed", path)
	}

	file := filepath.Clean(path)
	if _, ok := w.files[file]; ok {
		return nil
	}
	dir := filepath.Dir(file)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[file] = dir
	return nil
}

func (w *watcherImpl) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	file := filepath.Clean(path)
	dir, ok := w.files[file]
	if !ok {
		return
	}
	delete(w.files, file)
	if p := w.timers[file]; p != nil {
		p.timer.Stop()
		delete(w.timers, file)
	}
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			_ = w.fs.Remove(dir)
		}
	}
}

func (w *watcherImpl) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for file, p := range w.timers {
		p.timer.Stop()
		delete(w.timers, file)
	}
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}

func (w *watcherImpl) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule(filepath.Clean(event.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[Watch] error: %v", err)
		}
	}
}

// schedule restarts the settle timer for file if it is watched.
func (w *watcherImpl) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, ok := w.files[file]; !ok {
		return
	}
	if p := w.timers[file]; p != nil {
		p.timer.Stop()
	}
	p := &pending{}
	w.timers[file] = p
	p.timer = time.AfterFunc(w.settle, func() { w.fire(file, p) })
}

// fire reports file unless p was superseded by a later change or cancelled while the
// callback waited for the lock.
func (w *watcherImpl) fire(file string, p *pending) {
	w.mu.Lock()
	if w.closed || w.timers[file] != p {
		w.mu.Unlock()
		return
	}
	delete(w.timers, file)
	_, watched := w.files[file]
	w.mu.Unlock()
	if watched && w.onChange != nil {
		log.Printf("[Watch] %s changed", file)
		w.onChange(file)
	}
}
