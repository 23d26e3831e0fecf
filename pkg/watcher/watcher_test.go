package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitSignal(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changes():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestPollDetectsChange(t *testing.T) {
	path := tempFile(t)
	w := New(path, WithForcePoll(true), WithPollInterval(10*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Backdate so the rewrite below is a guaranteed mtime/size change even
	// on coarse filesystem clocks.
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := os.WriteFile(path, []byte("version-2"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitSignal(t, w, 3*time.Second) {
		t.Fatal("poll watcher missed the change")
	}
}

func TestNotifyDetectsChange(t *testing.T) {
	path := tempFile(t)
	w := New(path, WithDebounce(20*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("version-2"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitSignal(t, w, 3*time.Second) {
		t.Fatal("fsnotify watcher missed the change")
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	path := tempFile(t)
	w := New(path, WithDebounce(100*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitSignal(t, w, 3*time.Second) {
		t.Fatal("burst produced no signal")
	}
	// The whole burst fits one debounce window; no second signal should
	// arrive after it.
	select {
	case <-w.Changes():
		t.Fatal("burst produced a second signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStartTwice(t *testing.T) {
	w := New(tempFile(t), WithForcePoll(true))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(context.Background()); err != ErrAlreadyStarted {
		t.Fatalf("second start = %v, want ErrAlreadyStarted", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(tempFile(t), WithForcePoll(true))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()

	// A restart after stop is allowed.
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	w.Stop()
}

func TestIgnoresSiblingFiles(t *testing.T) {
	path := tempFile(t)
	w := New(path, WithDebounce(20*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	sibling := filepath.Join(filepath.Dir(path), "other.json")
	if err := os.WriteFile(sibling, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Fatal("signal for an unrelated sibling file")
	case <-time.After(200 * time.Millisecond):
	}
}
