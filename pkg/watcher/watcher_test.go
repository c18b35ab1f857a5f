package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func writeStudy(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "study.json")
			writeStudy(t, path, `{"plots":[]}`)

			var got atomic.Value
			w, err := New(path,
				WithDebounceDuration(20*time.Millisecond),
				WithPollInterval(20*time.Millisecond),
				WithForcePoll(poll),
				WithOnChange(func(p string) { got.Store(p) }),
			)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(context.Background()); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()

			if poll && !w.IsPolling() {
				t.Error("expected polling mode")
			}

			time.Sleep(50 * time.Millisecond)
			writeStudy(t, path, `{"plots":[{"row_index":1}]}`)

			select {
			case <-w.Changed():
			case <-time.After(2 * time.Second):
				t.Fatal("no change signalled")
			}
			if p, _ := got.Load().(string); p != w.Path() {
				t.Errorf("onChange path = %q, want %q", p, w.Path())
			}
		})
	}
}

func TestWatcher_AlreadyStarted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	writeStudy(t, path, "{}")

	w, err := New(path, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestWatcher_StopAndRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	writeStudy(t, path, "{}")

	w, err := New(path, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should be stopped")
	}
	w.Stop() // idempotent

	if err := w.Start(context.Background()); err != nil {
		t.Errorf("restart: %v", err)
	}
	w.Stop()
}

func TestWatcher_ContextCancelStopsPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	writeStudy(t, path, "{}")

	var changes atomic.Int32
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(10*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func(string) { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cancel()
	time.Sleep(50 * time.Millisecond)
	writeStudy(t, path, `{"changed":true}`)
	time.Sleep(100 * time.Millisecond)

	if n := changes.Load(); n != 0 {
		t.Errorf("expected no changes after cancel, got %d", n)
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.json")
	writeStudy(t, path, "{}")

	var removed atomic.Bool
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(10*time.Millisecond),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				removed.Store(true)
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, removed.Load) {
		t.Error("removal not reported")
	}
}

func TestWatcher_MissingFileLaterCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.json")

	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(10*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start on missing file: %v", err)
	}
	defer w.Stop()

	writeStudy(t, path, "{}")
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("creation not signalled")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("PLOTMAP_TEST_FLAG", "Yes")
	if !envBool("PLOTMAP_TEST_FLAG") {
		t.Error("Yes should be true")
	}
	t.Setenv("PLOTMAP_TEST_FLAG", "0")
	if envBool("PLOTMAP_TEST_FLAG") {
		t.Error("0 should be false")
	}
}
