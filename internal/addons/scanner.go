// SPDX-License-Identifier: MPL-2.0

package addons

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/osh-cli/osh/internal/config"
)

// ManifestNames are the files that mark a directory as an addon.
var ManifestNames = []string{"__manifest__.py", "__openerp__.py"}

// ignoredNames are never descended into or reported. Names starting with a
// dot are skipped as well.
var ignoredNames = map[string]struct{}{
	".git":        {},
	".hg":         {},
	".venv":       {},
	"venv":        {},
	"env":         {},
	"__pycache__": {},
	".mypy_cache": {},
}

type (
	// Options configures a Scanner.
	Options struct {
		// MaxDepth bounds the walk. Directories are listed while their depth
		// (0 for the base) is at most MaxDepth.
		MaxDepth int
		// Exclude holds doublestar patterns matched against each entry name
		// and its slash-separated path relative to the base.
		Exclude []string
		// Logger receives debug and warning records; nil means slog.Default().
		Logger *slog.Logger
	}

	// Result is the outcome of a scan.
	Result struct {
		// Paths are absolute addon directories, sorted, without duplicates.
		Paths       []string
		Diagnostics []Diagnostic
	}

	// Scanner walks directory trees looking for addons.
	Scanner struct {
		opts Options
	}

	walker struct {
		base   string
		opts   Options
		log    *slog.Logger
		found  map[string]struct{}
		diags  []Diagnostic
		active []string
	}
)

// DefaultOptions returns the built-in scan options.
func DefaultOptions() Options {
	return Options{MaxDepth: config.DefaultMaxDepth}
}

// OptionsFromConfig copies the addons section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxDepth: cfg.Addons.MaxDepth,
		Exclude:  slices.Clone(cfg.Addons.Exclude),
	}
}

// NewScanner creates a Scanner.
func NewScanner(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scanner{opts: opts}
}

// Discover scans base. Only failing to resolve or list base itself is an
// error; everything below it degrades to diagnostics.
func (s *Scanner) Discover(base string) (Result, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return Result{}, fmt.Errorf("scan addons: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Result{}, fmt.Errorf("scan addons: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return Result{}, fmt.Errorf("scan addons: %w", err)
	}

	w := &walker{
		base:   root,
		opts:   s.opts,
		log:    s.opts.Logger,
		found:  make(map[string]struct{}),
		active: []string{root},
	}
	w.visit(root, entries, 0)

	paths := make([]string, 0, len(w.found))
	for p := range w.found {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	return Result{Paths: paths, Diagnostics: w.diags}, nil
}

// Discover scans base with default options.
func Discover(base string) (Result, error) {
	return NewScanner(DefaultOptions()).Discover(base)
}

// AddonsPath joins the result into the comma separated form accepted by
// the server's --addons-path option.
func (r Result) AddonsPath() string {
	return strings.Join(r.Paths, ",")
}

func (w *walker) visit(dir string, entries []os.DirEntry, depth int) {
	for _, entry := range entries {
		name := entry.Name()
		if skipName(name) {
			continue
		}

		child := filepath.Join(dir, name)
		if w.excluded(name, child) {
			w.log.Debug("addon scan exclude", "path", child)
			continue
		}

		info, err := os.Stat(child)
		if err != nil && entry.Type()&os.ModeSymlink != 0 {
			w.log.Warn("skipping broken symlink", "path", child, "error", err)
			w.diags = append(w.diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeBrokenSymlink,
				Message:  "symlink target could not be resolved",
				Path:     child,
				Cause:    err,
			})
			continue
		}
		if err != nil || !info.IsDir() {
			continue
		}

		if isAddon(child) {
			w.found[child] = struct{}{}
		}

		if depth+1 > w.opts.MaxDepth {
			continue
		}
		w.descend(child, entry, depth+1)
	}
}

func (w *walker) descend(dir string, entry os.DirEntry, depth int) {
	if entry.Type()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(dir)
		if err == nil && slices.Contains(w.active, target) {
			w.diags = append(w.diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeSymlinkCycle,
				Message:  fmt.Sprintf("symlink %s points back to %s", dir, target),
				Path:     dir,
			})
			return
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warn("skipping unreadable directory", "path", dir, "error", err)
		w.diags = append(w.diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeUnreadableDir,
			Message:  "directory could not be listed",
			Path:     dir,
			Cause:    err,
		})
		return
	}

	key := dir
	if target, err := filepath.EvalSymlinks(dir); err == nil {
		key = target
	}
	w.active = append(w.active, key)
	w.visit(dir, entries, depth)
	w.active = w.active[:len(w.active)-1]
}

func (w *walker) excluded(name, path string) bool {
	if len(w.opts.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.base, path)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ignored := ignoredNames[name]
	return ignored
}

func isAddon(dir string) bool {
	for _, manifest := range ManifestNames {
		if _, err := os.Stat(filepath.Join(dir, manifest)); err == nil {
			return true
		}
	}
	return false
}
