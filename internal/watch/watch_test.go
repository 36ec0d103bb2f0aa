package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDebouncesWritesIntoOneCallback(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, []string{"**/.git/**"}, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	changes := make(chan []string, 8)
	w.OnChange = func(paths []string) { changes <- paths }

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "Screen1.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case paths := <-changes:
		if len(paths) == 0 {
			t.Error("expected at least one changed path")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced callback")
	}
}

func TestWatcherIgnoresExcludedPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(dir, []string{"**/.git/**"}, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !w.shouldIgnore(filepath.Join(dir, ".git", "HEAD")) {
		t.Error("expected .git path to be ignored")
	}
	if w.shouldIgnore(filepath.Join(dir, "Screen1.json")) {
		t.Error("expected ordinary source file to not be ignored")
	}
}
