// Package watch re-runs an action whenever a file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Options controls File.
type Options struct {
	Debounce time.Duration
	Logger   logrus.FieldLogger

	// OnError receives errors returned by the action. The loop keeps running
	// unless OnError returns a non-nil error. When nil, errors are logged.
	OnError func(err error) error
}

// File calls fn each time path is written, created or replaced, until ctx
// is done. Bursts of events within the debounce period cause a single call.
// The parent directory is watched so that editors which save by renaming a
// temporary file are seen too. File returns nil when ctx is cancelled.
func File(ctx context.Context, path string, fn func() error, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(err error) error {
			log.WithError(err).Warn("watch action failed")
			return nil
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log = log.WithField("file", abs)
	log.Debug("watching")

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !relevant(ev.Op) {
				continue
			}
			log.WithField("op", ev.Op.String()).Debug("change")
			timer.Reset(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-timer.C:
			if err := fn(); err != nil {
				if err := onError(err); err != nil {
					return err
				}
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
