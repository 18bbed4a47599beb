package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/gitprof/pkg/log"
)

// DefaultDebounce is the default quiet period after a file event before
// detection is re-run.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatch is returned when files cannot be watched.
var ErrWatch = errors.New("watch")

// Handler receives detection outcomes from a [Watcher].
type Handler func(result Result, ok bool, err error)

// Watcher re-runs detection for a path when watched files change.
type Watcher struct {
	detector *Detector
	path     string
	files    []string
	debounce time.Duration
}

// WatcherOpt is a functional option for configuring a [Watcher].
type WatcherOpt func(*Watcher)

// WithDebounce sets the quiet period after a file event. The default is
// [DefaultDebounce].
func WithDebounce(d time.Duration) WatcherOpt {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a new [Watcher] running detection for path when any of
// files is written, created, removed, or renamed.
func NewWatcher(d *Detector, path string, files []string, opts ...WatcherOpt) *Watcher {
	w := &Watcher{
		detector: d,
		path:     path,
		debounce: DefaultDebounce,
	}

	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			w.files = append(w.files, abs)
		}
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run detects once, then again after each change, passing every outcome to
// fn. It blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatch, err)
	}
	defer fsw.Close()

	// Watch directories so that files replaced by rename are still seen.
	dirs := []string{}
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if slices.Contains(dirs, dir) {
			continue
		}

		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("%w %q: %w", ErrWatch, dir, err)
		}

		dirs = append(dirs, dir)
	}

	logger := log.WithContext(ctx).With(slog.String("path", w.path))

	w.detect(ctx, fn)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			logger.DebugContext(ctx, "watched file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			w.detector.Purge()
			w.detect(ctx, fn)
		}
	}
}

func (w *Watcher) detect(ctx context.Context, fn Handler) {
	result, ok, err := w.detector.DetectIn(ctx, w.path)
	fn(result, ok, err)
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}

	return slices.Contains(w.files, filepath.Clean(event.Name))
}
