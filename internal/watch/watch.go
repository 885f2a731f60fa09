// Package watch polls form definitions and reports which ones changed.
//
// The watcher walks the watched paths every interval and compares
// modification times. Changes found in one scan are delivered together.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op is the kind of change seen for a file.
type Op int

const (
	Created Op = iota
	Modified
	Removed
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one changed file.
type Change struct {
	Path string
	Op   Op
}

// Config configures a Watcher.
type Config struct {
	// Paths are files or directories to watch.
	Paths []string

	// Match selects files by base-name glob. Empty matches everything.
	Match []string

	// Ignore skips files and directories. A pattern without a slash is
	// matched against each path segment; one with a slash against the
	// whole path.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration

	// Logger receives paths that could not be read. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultIgnore contains patterns skipped when Config.Ignore is empty.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	".keepblock",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls the configured paths.
type Watcher struct {
	config Config

	mu       sync.Mutex
	onChange func([]Change)
	seen     map[string]time.Time
	running  bool
}

// New creates a Watcher. Call OnChange before Run.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{config: config}
}

// OnChange sets the callback for a batch of changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Run records the current state of the watched files, then polls until
// ctx is done. Files present at start are not reported.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.Scan()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changes := w.Scan(); len(changes) > 0 {
				w.mu.Lock()
				fn := w.onChange
				w.mu.Unlock()
				if fn != nil {
					fn(changes)
				}
			}
		}
	}
}

// Scan walks the watched paths once and returns what changed since the
// previous scan, sorted by path. The first scan only records state.
func (w *Watcher) Scan() []Change {
	current := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				w.config.Logger.Debug("watch: skip unreadable path", "path", p, "error", err)
				return nil
			}
			if d.IsDir() {
				if p != root && w.ignored(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.ignored(p) || !w.matches(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				w.config.Logger.Debug("watch: skip unreadable path", "path", p, "error", err)
				return nil
			}
			current[p] = info.ModTime()
			return nil
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	previous := w.seen
	w.seen = current
	if previous == nil {
		return nil
	}

	var changes []Change
	for p, mod := range current {
		last, ok := previous[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Op: Created})
		case !mod.Equal(last):
			changes = append(changes, Change{Path: p, Op: Modified})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Op: Removed})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// Running reports whether Run is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) matches(p string) bool {
	if len(w.config.Match) == 0 {
		return true
	}
	name := filepath.Base(p)
	for _, pattern := range w.config.Match {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(p string) bool {
	normalized := filepath.ToSlash(p)
	segments := strings.Split(normalized, "/")
	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, "/") {
			if ok, _ := path.Match(pattern, normalized); ok {
				return true
			}
			continue
		}
		for _, seg := range segments {
			if seg == "" || seg == "." {
				continue
			}
			if ok, _ := path.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}
