// Package watch reloads inputs when they change on disk.
//
// A [Watcher] observes files and directories with fsnotify and calls its
// handler once per burst of changes, after the burst has been quiet for
// the debounce window. Files are watched through their parent directory
// so editors that save by rename are still seen.
//
//	w, err := watch.New([]string{"proof.xml"}, func(paths []string) {
//	    reload(paths)
//	}, watch.Options{})
//	go w.Run(ctx)
package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/prooftower/pkg/errors"
)

// DefaultDebounce is the quiet period before the handler runs.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the changed paths of one burst, sorted and deduplicated.
type Handler func(paths []string)

// Options configures a [Watcher].
type Options struct {
	Debounce time.Duration
	// Match filters files inside watched directories. Nil accepts all.
	Match  func(path string) bool
	Logger *log.Logger
}

// Watcher calls a handler when watched paths change.
type Watcher struct {
	fs      *fsnotify.Watcher
	handler Handler
	opts    Options
	logger  *log.Logger

	files map[string]bool // watched files, by cleaned path
	dirs  map[string]bool // directories watched as a whole

	closeOnce sync.Once
}

// New watches paths. Each path must exist and may be a file or directory.
func New(paths []string, handler Handler, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	w := &Watcher{
		fs:      fw,
		handler: handler,
		opts:    opts,
		logger:  opts.Logger.WithPrefix("watch"),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", path)
	}
	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}
	return nil
}

// relevant reports whether an event on path concerns a watched input.
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	if !w.dirs[filepath.Dir(path)] {
		return false
	}
	return w.opts.Match == nil || w.opts.Match(path)
}

// Run delivers debounced changes until ctx is done or the watcher is
// closed. A pending burst is flushed before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		slices.Sort(paths)
		clear(pending)
		w.logger.Debug("inputs changed", "paths", paths)
		w.handler(paths)
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				flush()
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				flush()
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			flush()
		}
	}
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fs.Close() })
	return err
}
