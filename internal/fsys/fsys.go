// Package fsys is the filesystem collaborator consumed by the walker
// and the transfer engine. All paths crossing this boundary are
// slash-separated and relative to the bound root.
package fsys

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the filesystem surface a transfer root exposes.
type FS interface {
	// Root reports the absolute root path, for logs and banners.
	Root() string
	// List returns the immediate children of one directory in
	// lexicographic order.
	List(rel string) ([]fs.DirEntry, error)
	// Mkdir creates a directory and any missing ancestors. An existing
	// directory is not an error.
	Mkdir(rel string) error
	// OpenRead opens a regular file for reading.
	OpenRead(rel string) (io.ReadCloser, error)
	// CreateTruncate opens a file for writing, truncating any previous
	// content and creating missing parent directories.
	CreateTruncate(rel string) (io.WriteCloser, error)
}

// DirFS backs FS with a directory on the local filesystem.
type DirFS struct {
	root string
}

// NewDir binds root as a transfer root. The root must already exist
// and be a directory; it is canonicalized so every derived path stays
// under one absolute prefix.
func NewDir(root string) (*DirFS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("fsys: resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("fsys: stat root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fsys: root %q is not a directory", root)
	}
	return &DirFS{root: abs}, nil
}

func (d *DirFS) Root() string {
	return d.root
}

func (d *DirFS) List(rel string) ([]fs.DirEntry, error) {
	return os.ReadDir(d.join(rel))
}

func (d *DirFS) Mkdir(rel string) error {
	return os.MkdirAll(d.join(rel), 0o755)
}

func (d *DirFS) OpenRead(rel string) (io.ReadCloser, error) {
	return os.Open(d.join(rel))
}

func (d *DirFS) CreateTruncate(rel string) (io.WriteCloser, error) {
	full := d.join(rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

func (d *DirFS) join(rel string) string {
	if rel == "" || rel == "." {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(rel))
}
