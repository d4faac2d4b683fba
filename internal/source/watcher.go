package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Debouncer collapses bursts of calls into a single invocation after a quiet period.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the configured delay, resetting any pending invocation.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

// Watcher invokes a callback when markdown files below the content root change.
//
// The watch is recursive. Directories created while watching are added to the
// watch so nested edits are seen too. Changes are debounced so that editors
// writing several events per save trigger a single callback.
type Watcher struct {
	*environment.Env

	Root     string
	Debounce time.Duration
	OnChange func()
}

// Watch blocks until ctx is done, invoking OnChange (debounced) for relevant events.
//
// Relevant events are create, write, remove and rename of markdown files or
// of watched directories. Everything else, e.g. editor swap files, is ignored.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.OnChange == nil {
		return fmt.Errorf("watcher has no change callback")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating filesystem watcher: %w", err)
	}
	defer fsWatcher.Close()

	err = w.addRecursively(fsWatcher, w.Root)
	if err != nil {
		return fmt.Errorf("error watching content root %s: %w", w.Root, err)
	}

	debouncer := NewDebouncer(w.Debounce)

	w.LogInfof(logging.GetLogTypeWatcher(), "watching %s for markdown changes", w.Root)

	for {
		select {
		case <-ctx.Done():
			debouncer.Stop()
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsWatcher, debouncer, event)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.LogError(logging.GetLogTypeWatcher(), err.Error())
		}
	}
}

func (w *Watcher) handleEvent(fsWatcher *fsnotify.Watcher, debouncer *Debouncer, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !watchableDir(filepath.Base(event.Name)) {
				return
			}
			if err := w.addRecursively(fsWatcher, event.Name); err != nil {
				w.LogError(logging.GetLogTypeWatcher(), err.Error())
			}
			w.scheduleSync(debouncer, event)
			return
		}
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		// a watched directory vanished
		if slices.Contains(fsWatcher.WatchList(), event.Name) {
			w.scheduleSync(debouncer, event)
			return
		}
	}

	if !IsMarkdownFile(event.Name) {
		return
	}

	w.scheduleSync(debouncer, event)
}

func (w *Watcher) scheduleSync(debouncer *Debouncer, event fsnotify.Event) {
	w.LogDebugf(logging.GetLogTypeWatcher(), "%s changed (%s); scheduling re-sync", event.Name, event.Op)
	debouncer.Trigger(w.OnChange)
}

// addRecursively registers root and every watchable directory below it.
func (w *Watcher) addRecursively(fsWatcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && !watchableDir(d.Name()) {
			return filepath.SkipDir
		}

		return fsWatcher.Add(path)
	})
}

// watchableDir reports whether a directory with the given base name belongs to the corpus.
func watchableDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}

	_, skipped := skippedDirNames[name]
	return !skipped
}
