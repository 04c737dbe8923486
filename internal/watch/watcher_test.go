package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInboxWatcherReportsMedia(t *testing.T) {
	dir := t.TempDir()
	w, err := NewInboxWatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.Start(context.Background())

	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("video-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	// Unsupported files are never reported.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Files():
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("media file never reported")
	}

	select {
	case got := <-w.Files():
		t.Errorf("unexpected extra file reported: %s", got)
	case <-time.After(time.Second):
	}
}

func TestInboxWatcherCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w, err := NewInboxWatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("inbox directory not created: %v", err)
	}
}
