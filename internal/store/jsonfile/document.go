// Package jsonfile persists the stores as pretty-printed JSON documents that
// are read and rewritten whole on every operation.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"expensetracker/internal/core"
)

const indent = "    "

// document is one JSON file holding a mapping. The mutex serializes the
// read-modify-write cycle of a single process; other processes writing the
// same file can still overwrite each other.
type document[T any] struct {
	mu    sync.Mutex
	path  string
	empty func() T
}

func newDocument[T any](path string, empty func() T) *document[T] {
	return &document[T]{path: path, empty: empty}
}

// read returns empty() when the file does not exist.
func (d *document[T]) read() (T, error) {
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return d.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, core.NewStorageReadError(d.path, err)
	}

	v := d.empty()
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, core.NewStorageReadError(d.path, fmt.Errorf("parse: %w", err))
	}
	return v, nil
}

// write replaces the file atomically: the new content goes to a temp file in
// the same directory which is then renamed over the old one.
func (d *document[T]) write(v T) error {
	raw, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return core.NewStorageWriteError(d.path, fmt.Errorf("encode: %w", err))
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.NewStorageWriteError(d.path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return core.NewStorageWriteError(d.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return core.NewStorageWriteError(d.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return core.NewStorageWriteError(d.path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return core.NewStorageWriteError(d.path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return core.NewStorageWriteError(d.path, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		cleanup()
		return core.NewStorageWriteError(d.path, err)
	}
	return nil
}
