package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/flagwise/internal/logger"
)

// DefaultDebounceDelay coalesces the burst of events an editor or an atomic
// rename produces for a single save.
const DefaultDebounceDelay = 150 * time.Millisecond

// Watcher reloads the config file when it changes and publishes each valid
// result on Updates. Invalid edits are logged and skipped; the previous
// config stays in effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan *Config
	done    chan struct{}
	log     logger.Sink

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool
}

// NewWatcher watches the directory holding path, since atomic saves replace
// the file rather than writing to it.
func NewWatcher(path string, log logger.Sink) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:          filepath.Clean(path),
		watcher:       fw,
		updates:       make(chan *Config, 1),
		done:          make(chan struct{}),
		log:           logger.OrNop(log),
		debounceDelay: DefaultDebounceDelay,
	}
	go w.processEvents()
	return w, nil
}

// Updates delivers reloaded configs. Only the newest pending update is kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops watching and closes Updates.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	close(w.updates)
	return err
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.LogWarn(fmt.Sprintf("config watcher: %v", err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.log.LogWarn(fmt.Sprintf("ignoring config change: %v", err))
		return
	}
	cfg = cfg.Resolve(filepath.Dir(w.path))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// Drop a stale pending update so the reader always sees the newest.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.log.LogInfo("config reloaded")
}
