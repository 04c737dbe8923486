// Package watch observes an inbox directory and reports media files dropped
// into it, so the dashboard can submit them automatically. It is the terminal
// analog of drag-and-drop onto the upload zone.
package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/veriscope/veriscope/internal/detection"
)

// Files written in bursts settle before being reported, so a half-copied
// video is not submitted mid-write.
const settleDelay = 500 * time.Millisecond

// InboxWatcher emits paths of supported media files created in one directory.
type InboxWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	files   chan string

	pending map[string]time.Time
	mutex   sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// NewInboxWatcher creates a watcher for dir, creating the directory when it
// does not exist yet.
func NewInboxWatcher(dir string) (*InboxWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &InboxWatcher{
		dir:     dir,
		watcher: watcher,
		files:   make(chan string, 8),
		pending: make(map[string]time.Time),
		done:    make(chan struct{}),
	}, nil
}

// Files returns the stream of settled media paths.
func (w *InboxWatcher) Files() <-chan string {
	return w.files
}

// Start launches the watch loop.
func (w *InboxWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

func (w *InboxWatcher) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !detection.SupportedMedia(event.Name) {
				continue
			}
			w.mutex.Lock()
			w.pending[event.Name] = time.Now()
			w.mutex.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("inbox watcher error", "error", err)

		case <-ticker.C:
			for _, path := range w.settled() {
				select {
				case w.files <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// settled drains pending entries whose last write is older than the settle
// delay.
func (w *InboxWatcher) settled() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	var ready []string
	now := time.Now()
	for path, last := range w.pending {
		if now.Sub(last) >= settleDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

// Close stops watching and releases resources.
func (w *InboxWatcher) Close() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	return w.watcher.Close()
}
