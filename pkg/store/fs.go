package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FS stores artifacts as files below a root directory. Absolute keys are
// used as-is.
type FS struct {
	root string
}

// NewFS returns a file store rooted at root.
func NewFS(root string) *FS {
	return &FS{root: root}
}

// Path returns the file path for key.
func (s *FS) Path(key string) string {
	if filepath.IsAbs(key) || s.root == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(s.root, key)
}

// Read implements Store.
func (s *FS) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Op: "read", Key: key, Err: ErrNotExist}
		}
		return nil, &PathError{Op: "read", Key: key, Err: err}
	}
	return data, nil
}

// Write implements Store. The file is replaced atomically through a
// temporary file in the same folder; an existing file keeps its mode.
func (s *FS) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)
	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PathError{Op: "write", Key: key, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &PathError{Op: "write", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PathError{Op: "write", Key: key, Err: err}
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return &PathError{Op: "write", Key: key, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &PathError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// EnsureDir implements Store.
func (s *FS) EnsureDir(ctx context.Context, key string, create bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.Path(key))
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return &PathError{Op: "mkdir", Key: key, Err: fs.ErrExist}
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &PathError{Op: "mkdir", Key: key, Err: err}
	}
	if !create {
		return &PathError{Op: "mkdir", Key: key, Err: ErrNoFolder}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PathError{Op: "mkdir", Key: key, Err: err}
	}
	return nil
}
