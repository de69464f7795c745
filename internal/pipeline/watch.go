package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/pagerank/internal/config"
)

// debounce is how long a file must stay quiet before a change is reported.
// Large edge files are usually written in many chunks.
const debounce = 250 * time.Millisecond

// Watcher reports changes to a single edge file. The parent directory is
// watched so that editors and tools that replace the file by rename are
// still seen.
type Watcher struct {
	Path    string
	Changes <-chan string // receives Path after each settled change

	changes chan string
	done    chan struct{}
	watcher *fsnotify.Watcher
	quiet   time.Duration
}

// NewWatcher creates a watcher for the file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	ch := make(chan string, 1)
	return &Watcher{
		Path:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
		quiet:   debounce,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.quiet / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.quiet {
				continue
			}
			pending = time.Time{}
			// Coalesce: one queued change is enough to trigger a re-run.
			select {
			case w.changes <- w.Path:
			default:
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

// Watch runs cfg once, then re-runs it every time the input file changes
// until ctx is cancelled. Failures of re-runs are printed and do not stop
// watching; a failure of the first run is returned.
func (r *Runner) Watch(ctx context.Context, cfg config.Config) error {
	if _, err := r.Execute(ctx, cfg); err != nil {
		return err
	}

	w, err := NewWatcher(cfg.Input)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.watcher.Close()
		return err
	}
	defer w.Stop()

	p := r.printer()
	p.Watching(w.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.Changes:
			p.InputChanged(path)
			if _, err := r.Execute(ctx, cfg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.Error(err.Error())
			}
		}
	}
}
