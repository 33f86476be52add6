// Package watch surfaces on-disk changes to notebook files so the UI can
// reload state edited by other programs.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ahuret/polynote/internal/notebook"
)

// Event names a notebook file that changed on disk. Removed is set when the
// file no longer exists.
type Event struct {
	Path    string
	Removed bool
}

// Watch streams change events for notebook files under dir until ctx is
// cancelled. Rapid bursts for the same file are coalesced so a save from an
// editor produces a single reload. The channel closes when ctx is done or
// the watcher fails.
func Watch(ctx context.Context, dir string) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer watcher.Close()

		coalesce := newCoalescer(150 * time.Millisecond)
		defer coalesce.stop()

		send := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Errors are not classifiable per file; let the consumer's
				// next reload pick up whatever changed.
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(evt.Name, notebook.Extension) {
					continue
				}
				removed := evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0
				coalesce.enqueue(Event{Path: filepath.Clean(evt.Name), Removed: removed}, send)
			}
		}
	}()
	return events, nil
}

// coalescer batches events per path so a burst of writes flushes once.
type coalescer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]Event
	delay   time.Duration
}

func newCoalescer(delay time.Duration) *coalescer {
	return &coalescer{delay: delay, pending: map[string]Event{}}
}

func (c *coalescer) enqueue(ev Event, send func(Event)) {
	c.mu.Lock()
	c.pending[ev.Path] = ev
	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, func() {
			c.flush(send)
		})
	}
	c.mu.Unlock()
}

func (c *coalescer) flush(send func(Event)) {
	c.mu.Lock()
	pending := c.pending
	c.pending = map[string]Event{}
	c.timer = nil
	c.mu.Unlock()

	for _, ev := range pending {
		send(ev)
	}
}

func (c *coalescer) stop() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}
