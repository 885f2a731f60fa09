// Package store reads and writes generated artifacts.
//
// The code writer only needs three things from a backend: read the
// previous artifact, write the new one, and make sure the folder for it
// exists. FS serves a working tree, S3 serves a bucket, and Memory
// serves tests and scratch space.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotExist is returned by Read when no artifact is stored under the key.
	ErrNotExist = errors.New("store: artifact does not exist")

	// ErrNoFolder is returned by EnsureDir when the folder is missing and
	// creation was not requested.
	ErrNoFolder = errors.New("store: folder does not exist")
)

// Store is an artifact backend.
type Store interface {
	// Read returns the artifact stored under key, or an error wrapping ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the artifact stored under key.
	Write(ctx context.Context, key string, data []byte) error

	// EnsureDir checks that the folder holding key exists, creating it
	// when create is true.
	EnsureDir(ctx context.Context, key string, create bool) error
}

// Memory is an in-memory Store. The zero value is ready to use.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Read implements Store.
func (m *Memory) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[key]
	if !ok {
		return nil, &PathError{Op: "read", Key: key, Err: ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// Write implements Store.
func (m *Memory) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = append([]byte(nil), data...)
	return nil
}

// EnsureDir implements Store. Memory has no folders.
func (m *Memory) EnsureDir(ctx context.Context, key string, create bool) error {
	return ctx.Err()
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PathError records the key and operation that failed.
type PathError struct {
	Op  string
	Key string
	Err error
}

func (e *PathError) Error() string {
	return "store: " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}
