// Package watch reloads a template file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/template"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc receives a freshly loaded template.
type ReloadFunc func(*layout.Tree) error

// Watcher watches one template file. It watches the file's directory so
// editors that save by renaming a temporary file are seen too.
type Watcher struct {
	path     string
	reload   ReloadFunc
	logger   *log.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New creates a watcher for path. If logger is nil, log.Default() is used.
func New(path string, reload ReloadFunc, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		reload:   reload,
		logger:   logger,
		debounce: DefaultDebounce,
		fsw:      fsw,
	}, nil
}

// SetDebounce changes the settle delay before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run processes file events until ctx is done, then closes the watcher.
// A template that fails to load is logged and skipped; the running layout
// stays as it is.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	tick := time.NewTicker(w.debounce / 4)
	defer tick.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("template event", "op", ev.Op.String(), "path", ev.Name)
			last = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-tick.C:
			if last.IsZero() || time.Since(last) < w.debounce {
				continue
			}
			last = time.Time{}
			w.fire()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) fire() {
	tmpl, err := template.Load(w.path)
	if err != nil {
		w.logger.Warn("template not reloaded", "path", w.path, "err", err)
		return
	}
	if err := w.reload(tmpl); err != nil {
		w.logger.Error("template reload failed", "path", w.path, "err", err)
		return
	}
	w.logger.Info("template reloaded", "path", w.path, "groups", len(tmpl.Groups()))
}
