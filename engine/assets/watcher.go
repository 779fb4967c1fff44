package assets

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/halfblock/engine/core"
)

// Editors often write a file in several steps; changes closer together
// than this are reported once.
const DefaultDebounce = 100 * time.Millisecond

var ErrWatcherClosed = errors.New("watcher already closed")

// Watcher reports writes to a single file. The parent directory is watched
// rather than the file itself so that editors replacing the file through a
// rename keep being noticed.
type Watcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration

	mutex    sync.Mutex
	fsnotify *fsnotify.Watcher
	timer    *time.Timer
	isClosed bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher starts watching path. onChange runs on the watcher's own
// goroutine after every debounced create or write.
func NewWatcher(path string, onChange func(path string)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	core.LogDebug("watching %s", abs)
	return w, nil
}

func (w *Watcher) Path() string {
	return w.path
}

// SetDebounce changes the quiet period. Zero reports every event.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.debounce = d
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileEvent()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("watching %s: %v", w.path, err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleFileEvent() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return
	}
	if w.debounce <= 0 {
		go w.fire()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mutex.Lock()
	closed := w.isClosed
	w.mutex.Unlock()
	if closed {
		return
	}
	core.LogDebug("%s changed", w.path)
	w.onChange(w.path)
}

// Close stops watching. Pending debounced notifications are dropped.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return ErrWatcherClosed
	}
	w.isClosed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
