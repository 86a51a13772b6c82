package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watcher rebuilds the site when files under Dirs change. Bursts of events
// collapse into one rebuild and rebuilds never overlap.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Logger   *log.Logger
	Rebuild  func(ctx context.Context) error
}

// Watch runs a Watcher with the default debounce until ctx is done.
func Watch(ctx context.Context, dirs []string, logger *log.Logger, rebuild func(context.Context) error) error {
	w := &Watcher{Dirs: dirs, Logger: logger, Rebuild: rebuild}
	return w.Run(ctx)
}

// Run watches until ctx is done. Missing directories are skipped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := w.open()
	if err != nil {
		return err
	}
	return w.loop(ctx, fw)
}

func (w *Watcher) logger() *log.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return log.Default()
}

func (w *Watcher) open() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, dir := range w.Dirs {
		if _, err := os.Stat(dir); err != nil {
			w.logger().Debug("not watching missing directory", "dir", dir)
			continue
		}
		w.addRecursive(fw, dir)
	}
	return fw, nil
}

// loop owns fw and closes it on return. It waits for a running rebuild to
// finish before returning.
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	defer fw.Close()

	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	requests := make(chan struct{}, 1)
	trigger := newTrigger(delay, requests)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.work(ctx, requests)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(fw, ev.Name)
				}
			}
			w.logger().Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watcher error", "err", err)
		}
	}
}

// work runs one rebuild per request. A request that arrives during a
// rebuild waits in the channel, so at most one rebuild is pending.
func (w *Watcher) work(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			w.logger().Info("rebuilding")
			if err := w.Rebuild(ctx); err != nil {
				w.logger().Warn("rebuild failed", "err", err)
			}
		}
	}
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				w.logger().Warn("watch add failed", "dir", path, "err", err)
			}
		}
		return nil
	})
}

// newTrigger returns a function that sends on requests once calls have
// stopped for delay. The send never blocks.
func newTrigger(delay time.Duration, requests chan<- struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
}

// ignored reports whether path is an editor or OS artifact.
func ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
