// Package tail follows the query log file and emits newly appended entries,
// "tail -f" style. Because log records are CSV and may span lines (responses
// contain newlines), the tailer re-reads the log on each change and emits
// only the records it has not yet seen, rather than splitting raw bytes.
package tail

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/salescope-dev/salescope/internal/qlog"
)

// Options configures the tailer behavior.
type Options struct {
	FilePath   string                  // Path to the query log file
	Lines      int                     // Number of trailing entries to show initially
	Follow     bool                    // Whether to follow the file for new entries
	OutputFunc func(qlog.Entry) error  // Called for each emitted entry
}

// Tailer follows a query log file.
type Tailer struct {
	opts    Options
	log     *qlog.Logger
	seen    int
	watcher *fsnotify.Watcher
}

// New creates a new Tailer with the given options.
func New(opts Options) *Tailer {
	return &Tailer{
		opts: opts,
		log:  qlog.New(opts.FilePath),
	}
}

// Run starts tailing. It blocks until the context is cancelled or an error
// occurs. A missing log file is not an error when following; the tailer
// waits for it to appear.
func (t *Tailer) Run(ctx context.Context) error {
	entries, err := t.log.ReadAll()
	if err != nil && !errors.Is(err, qlog.ErrNoLogs) {
		return err
	}

	start := 0
	if t.opts.Lines > 0 && len(entries) > t.opts.Lines {
		start = len(entries) - t.opts.Lines
	}
	for _, e := range entries[start:] {
		if err := t.opts.OutputFunc(e); err != nil {
			return err
		}
	}
	t.seen = len(entries)

	if !t.opts.Follow {
		return nil
	}

	if err := t.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	defer t.watcher.Close()

	return t.watch(ctx)
}

// setupWatcher watches the log file's directory so create events are seen
// even when the file does not exist yet.
func (t *Tailer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(t.opts.FilePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	t.watcher = watcher
	return nil
}

func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-t.watcher.Events:
			if !ok {
				return nil
			}
			if err := t.handleEvent(event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (t *Tailer) handleEvent(event fsnotify.Event) error {
	if filepath.Clean(event.Name) != filepath.Clean(t.opts.FilePath) {
		return nil
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return t.emitNew()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// File replaced; start over when it reappears.
		t.seen = 0
	}
	return nil
}

// emitNew replays the log and emits entries appended since the last read.
func (t *Tailer) emitNew() error {
	entries, err := t.log.ReadAll()
	if err != nil {
		if errors.Is(err, qlog.ErrNoLogs) {
			return nil
		}
		return err
	}

	if len(entries) < t.seen {
		// Truncated or rewritten; treat everything as new.
		t.seen = 0
	}

	for _, e := range entries[t.seen:] {
		if err := t.opts.OutputFunc(e); err != nil {
			return err
		}
	}
	t.seen = len(entries)
	return nil
}
