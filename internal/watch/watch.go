// Package watch re-runs a scan when files under a root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/entropy-sentinel/sentinel/internal/debounce"
)

// DefaultDelay is how long edits must settle before a rescan.
const DefaultDelay = 500 * time.Millisecond

// ScanFunc scans the given root-relative paths; nil means everything.
type ScanFunc func(ctx context.Context, paths []string)

type Options struct {
	Root  string
	Delay time.Duration
	// Skip reports whether a root-relative path is never scanned. Skipped
	// directories are not watched.
	Skip   func(rel string, isDir bool) bool
	Logger zerolog.Logger
}

type Watcher struct {
	opts    Options
	scan    ScanFunc
	fw      *fsnotify.Watcher
	pending map[string]struct{}
	mu      sync.Mutex
	scanMu  sync.Mutex
	deb     *debounce.Debouncer[context.Context]
}

// New watches every directory under opts.Root that Skip allows.
func New(opts Options, scan ScanFunc) (*Watcher, error) {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Skip == nil {
		opts.Skip = func(string, bool) bool { return false }
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Root = root
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{opts: opts, scan: scan, fw: fw, pending: map[string]struct{}{}}
	w.deb = debounce.New(opts.Delay, w.flush)
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Run scans once immediately, then rescans changed files once edits have
// been quiet for the configured delay. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	w.runScan(ctx, nil)
	log := w.opts.Logger
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("watch loop stopped")
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel, err := filepath.Rel(w.opts.Root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	log := w.opts.Logger.With().Str("path", rel).Str("op", ev.Op.String()).Logger()

	if ev.Has(fsnotify.Create) {
		if isDir(ev.Name) {
			if w.opts.Skip(rel, true) {
				return
			}
			if err := w.addTree(ev.Name); err != nil {
				log.Warn().Err(err).Msg("could not watch new directory")
			}
			return
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if w.opts.Skip(rel, false) {
		return
	}
	log.Debug().Msg("change scheduled for rescan")
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
	w.deb.Trigger(ctx)
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]struct{}{}
	w.mu.Unlock()
	if len(paths) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(paths)
	w.runScan(ctx, paths)
}

func (w *Watcher) runScan(ctx context.Context, paths []string) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()
	w.scan(ctx, paths)
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(w.opts.Root, p)
		rel = filepath.ToSlash(rel)
		if rel != "." && w.opts.Skip(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", rel, err)
		}
		return nil
	})
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
