// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = time.Second

var (
	// ErrNoRoots is returned by New when there is nothing to watch.
	ErrNoRoots = errors.New("watch: no directories to watch")

	// Byte-compiled files and editor droppings change on every server start
	// and would restart it in a loop.
	defaultIgnores = []string{
		"**/.git/**",
		"**/__pycache__/**",
		"**/*.pyc",
		"**/node_modules/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories to watch recursively, typically the
		// addons path entries.
		Roots []string
		// Patterns select the files that count as changes, matched against
		// the slash path relative to the owning root. Empty matches all.
		Patterns []string
		// Ignore is merged with the built-in ignores.
		Ignore   []string
		Debounce time.Duration
		// OnChange receives the sorted absolute paths changed during one
		// debounce window. Calls never overlap.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *slog.Logger
	}

	// Watcher monitors the configured roots. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		ignores  []string
		debounce time.Duration
		log      *slog.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory under each
// root.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", r, err)
		}
		roots = append(roots, abs)
	}
	slices.Sort(roots)
	roots = slices.Compact(roots)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		log:      logger,
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute, deduplicated watch roots.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Run processes events until ctx is canceled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			// Retry later so the batch is not lost.
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.log.Error("change handler failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("closing watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			rel, ok := w.relative(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.matches(rel) {
				continue
			}

			w.log.Debug("file changed", "path", evt.Name, "op", evt.Op.String())
			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.log.Warn("not watching inaccessible path", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if rel, ok := w.relative(path); ok && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.log.Warn("not watching new directory", "path", path, "error", err)
	}
}

// relative returns path relative to the deepest root containing it.
func (w *Watcher) relative(path string) (string, bool) {
	best := ""
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	if best == "" {
		return "", false
	}
	rel, err := filepath.Rel(best, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
