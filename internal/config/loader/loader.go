// Package loader reads configuration files and environment variables into
// nested maps.
//
// TOML and YAML files are supported; the format is picked from the file
// extension. Missing files are not errors.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Loader produces one layer of configuration. A source that does not
// exist yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the part of the OS the file loaders touch. Tests swap in
// an in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }
func (osFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS reads the real file system.
func DefaultFS() FileSystem { return osFS{} }

// readFile reads path, reporting a missing file as nil data.
func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}

// FindFile returns the first existing file named base plus one of
// Extensions inside dir.
func FindFile(fsys FileSystem, dir, base string) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
