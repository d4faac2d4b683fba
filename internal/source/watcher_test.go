package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/source"

	"go.uber.org/zap"
)

// ####################### debouncer tests
func TestDebouncer_CollapsesBursts(t *testing.T) {
	var calls atomic.Int32

	d := source.NewDebouncer(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(300 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("got %d calls, want 1", got)
	}
}

func TestDebouncer_FiresAgainAfterQuietPeriod(t *testing.T) {
	var calls atomic.Int32

	d := source.NewDebouncer(20 * time.Millisecond)

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(150 * time.Millisecond)

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Errorf("got %d calls, want 2", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var calls atomic.Int32

	d := source.NewDebouncer(50 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(200 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("got %d calls, want 0", got)
	}
}

// ####################### watcher tests
func TestWatcher_TriggersOnMarkdownWrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tips/1.md", "# Tip 1")

	changes := make(chan struct{}, 1)
	w := newWatcher(root, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx) }()

	// give the watcher time to register the directories
	time.Sleep(250 * time.Millisecond)

	writeFile(t, root, "tips/2.md", "# Tip 2")

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change callback after writing a markdown file")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()

	var calls atomic.Int32
	w := newWatcher(root, func() { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx) }()

	time.Sleep(250 * time.Millisecond)

	writeFile(t, root, "diagram.png", "not markdown")

	time.Sleep(500 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("got %d callbacks, want 0", got)
	}
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	changes := make(chan struct{}, 16)
	w := newWatcher(root, func() { changes <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx) }()

	time.Sleep(250 * time.Millisecond)

	if err := os.MkdirAll(filepath.Join(root, "guides"), 0o755); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change callback after creating a directory")
	}

	writeFile(t, root, "guides/setup.md", "# Setup")

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change callback after writing below the new directory")
	}
}

func TestWatcher_MissingCallback(t *testing.T) {
	w := newWatcher(t.TempDir(), nil)

	err := w.Watch(context.Background())
	if err == nil {
		t.Fatal("want error, but got nil")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := newWatcher(filepath.Join(t.TempDir(), "missing"), func() {})

	err := w.Watch(context.Background())
	if err == nil {
		t.Fatal("want error, but got nil")
	}
}

func TestWatcher_StopsWhenContextIsCancelled(t *testing.T) {
	w := newWatcher(t.TempDir(), func() {})

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

// ####################### creating fixtures
func newWatcher(root string, onChange func()) *source.Watcher {
	env := environment.Null()
	env.Logger = logging.DefaultLogger{Logger: zap.NewNop().Sugar()}

	return &source.Watcher{
		Env:      env,
		Root:     root,
		Debounce: 50 * time.Millisecond,
		OnChange: onChange,
	}
}
