package internal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/rule"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// SetDebounce changes the delay between the last write and the reload.
func (e *Engine) SetDebounce(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce = d
}

// StartWatching reloads path every time it is saved and passes the new
// rule set to onLoad, which may be nil. The directory is watched rather
// than the file so editors that save by rename keep being followed.
func (e *Engine) StartWatching(path string, onLoad func(*rule.RuleSet)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isWatching {
		return fmt.Errorf("already watching %s", e.watchPath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	e.watcher = w
	e.watchPath = abs
	e.done = make(chan struct{})
	e.isWatching = true

	go e.watchLoop(w, abs, e.debounce, e.done, onLoad)
	return nil
}

// StopWatching stops the watcher started by StartWatching.
func (e *Engine) StopWatching() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isWatching {
		e.logger.Debug("not watching")
		return nil
	}

	e.isWatching = false
	close(e.done)
	return e.watcher.Close()
}

func (e *Engine) watchLoop(w *fsnotify.Watcher, path string, debounce time.Duration, done <-chan struct{}, onLoad func(*rule.RuleSet)) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !isRuleFileEvent(event, path) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			e.handleFileEvent(path, onLoad)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			e.logger.Error("watcher error", zap.Error(err))

		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (e *Engine) handleFileEvent(path string, onLoad func(*rule.RuleSet)) {
	rs, err := e.LoadFile(path)
	if err != nil {
		e.logger.Error("failed to reload rules", zap.String("path", path), zap.Error(err))
		return
	}
	e.logger.Info("rules reloaded",
		zap.String("path", path),
		zap.Int("rules", len(rs.Rules)),
		zap.Int("errors", len(rs.Diagnostics)),
	)
	if onLoad != nil {
		onLoad(rs)
	}
}

func isRuleFileEvent(event fsnotify.Event, path string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == path
}
