// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/slices"
)

// recorder collects OnChange invocations.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// start runs w until the test ends and fails the test if Run errors.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "resources"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	w, err := New(Config{Dir: dir, Debounce: 150 * time.Millisecond, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	write(t, filepath.Join(dir, "manifest.json"), "{}")
	time.Sleep(10 * time.Millisecond)
	write(t, filepath.Join(dir, "main.khat"), "app {}")
	time.Sleep(10 * time.Millisecond)
	write(t, filepath.Join(dir, "resources", "icon.png"), "png")

	select {
	case <-rec.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
	time.Sleep(300 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("OnChange called %d times, want 1: %v", len(calls), calls)
	}
	for _, want := range []string{"main.khat", "manifest.json", "resources/icon.png"} {
		if !slices.Contains(calls[0], want) {
			t.Errorf("changed = %v, missing %s", calls[0], want)
		}
	}
	if !slices.IsSorted(calls[0]) {
		t.Errorf("changed = %v, want sorted", calls[0])
	}
}

func TestWatcherIgnoresBuildOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{
		Dir:      dir,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	write(t, filepath.Join(dir, "SiBatik.khapp"), "KHAP")
	write(t, filepath.Join(dir, "SiBatik.khapp.sha256"), "abc  SiBatik.khapp\n")
	write(t, filepath.Join(dir, "build.log"), "noise")

	select {
	case <-rec.fired:
		t.Fatalf("OnChange fired for ignored files: %v", rec.snapshot())
	case <-time.After(300 * time.Millisecond):
	}

	write(t, filepath.Join(dir, "main.khat"), "app {}")
	select {
	case <-rec.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
	if calls := rec.snapshot(); len(calls[0]) != 1 || calls[0][0] != "main.khat" {
		t.Errorf("changed = %v, want [main.khat]", calls[0])
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Config{Dir: dir, Debounce: 50 * time.Millisecond, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	if err := os.Mkdir(filepath.Join(dir, "cultural"), 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rec.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the directory event")
	}

	// Give the event loop time to register the new directory.
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "cultural", "theme.json"), "{}")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-rec.fired:
		case <-deadline:
			t.Fatalf("change inside new directory not seen: %v", rec.snapshot())
		}
		for _, call := range rec.snapshot() {
			if slices.Contains(call, "cultural/theme.json") {
				return
			}
		}
	}
}

func TestWatcherDefersWhileBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu      sync.Mutex
		calls   int
		active  int
		overlap bool
	)
	done := make(chan struct{}, 4)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 30 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			mu.Lock()
			calls++
			active++
			overlap = overlap || active > 1
			mu.Unlock()

			time.Sleep(200 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			done <- struct{}{}
			return errors.New("build failed")
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	write(t, filepath.Join(dir, "a.khat"), "1")
	time.Sleep(80 * time.Millisecond)
	write(t, filepath.Join(dir, "b.khat"), "2")

	for range 2 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for rebuilds")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("OnChange ran concurrently")
	}
	if calls != 2 {
		t.Errorf("OnChange called %d times, want 2 (the deferred change must not be lost)", calls)
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)
	time.Sleep(20 * time.Millisecond)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Dir: t.TempDir(), Ignore: []string{"[z-"}}); err == nil {
		t.Error("New() accepted a malformed ignore pattern")
	}
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dir: t.TempDir(), Ignore: []string{"docs/**"}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		path string
		want bool
	}{
		{".git/HEAD", true},
		{"dist/SiBatik.khapp", true},
		{"out/SiBatik.khapp", true},
		{"SiBatik.khapp.sha256", true},
		{"main.khat.swp", true},
		{"resources/.DS_Store", true},
		{"docs/README.md", true},
		{"manifest.json", false},
		{"resources/icons/app.png", false},
		{"locales/en_US.json", false},
		{".gitignore", false},
	}
	for _, tt := range tests {
		if got := w.Ignored(tt.path); got != tt.want {
			t.Errorf("Ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
