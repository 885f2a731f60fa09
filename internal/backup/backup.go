// Package backup keeps zstd-compressed snapshots of artifacts before they
// are overwritten, so a regeneration can always be undone.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Ext is the file extension of a snapshot.
const Ext = ".zst"

const stampLayout = "20060102T150405.000000000Z"

// ErrNoSnapshot is returned when a key has no snapshots.
var ErrNoSnapshot = errors.New("backup: no snapshot")

// Snapshot is one saved copy of an artifact.
type Snapshot struct {
	Path string
	Key  string
	Time time.Time
}

// Dir manages snapshots below a directory.
type Dir struct {
	root string
	now  func() time.Time
}

// Option customizes a Dir.
type Option func(*Dir)

// WithClock overrides the clock used to name snapshots.
func WithClock(clock func() time.Time) Option {
	return func(d *Dir) {
		d.now = clock
	}
}

// New returns a snapshot directory rooted at root.
func New(root string, opts ...Option) *Dir {
	d := &Dir{root: root, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the snapshot directory.
func (d *Dir) Root() string {
	return d.root
}

// Save writes a compressed snapshot of data for key and returns its path.
func (d *Dir) Save(key string, data []byte) (string, error) {
	base := d.base(key)
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return "", fmt.Errorf("backup: create folder: %w", err)
	}
	path := base + "." + d.now().UTC().Format(stampLayout) + Ext

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("backup: create snapshot: %w", err)
	}
	if err := Write(file, data); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("backup: close snapshot: %w", err)
	}
	return path, nil
}

// List returns the snapshots for key, newest first.
func (d *Dir) List(key string) ([]Snapshot, error) {
	base := d.base(key)
	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("backup: list: %w", err)
	}

	prefix := filepath.Base(base) + "."
	var snaps []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Ext) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), Ext)
		ts, err := time.Parse(stampLayout, stamp)
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path: filepath.Join(filepath.Dir(base), name),
			Key:  key,
			Time: ts,
		})
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Time.After(snaps[j].Time)
	})
	return snaps, nil
}

// Latest returns the newest snapshot for key.
func (d *Dir) Latest(key string) (Snapshot, error) {
	snaps, err := d.List(key)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, fmt.Errorf("%w for %s", ErrNoSnapshot, key)
	}
	return snaps[0], nil
}

// Load decompresses the snapshot at path.
func Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer file.Close()
	return Read(file)
}

// Write compresses data to w.
func Write(w io.Writer, data []byte) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("backup: create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("backup: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("backup: compress: %w", err)
	}
	return nil
}

// Read decompresses a snapshot stream.
func Read(r io.Reader) ([]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("backup: create zstd reader: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("backup: decompress: %w", err)
	}
	return buf.Bytes(), nil
}

// base maps an artifact key to its snapshot path without timestamp.
// Absolute keys and keys escaping the root are flattened into the root.
func (d *Dir) base(key string) string {
	clean := filepath.ToSlash(filepath.Clean(key))
	clean = strings.TrimPrefix(clean, "/")
	clean = strings.TrimPrefix(clean, filepath.VolumeName(key))
	for strings.HasPrefix(clean, "../") {
		clean = strings.TrimPrefix(clean, "../")
	}
	clean = strings.ReplaceAll(clean, ":", "_")
	return filepath.Join(d.root, filepath.FromSlash(clean))
}
