// Package storage keeps uploaded file contents on the local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Blob describes a stored file.
type Blob struct {
	Name string
	Path string
	Size int64
}

// Disk stores blobs under a single directory with generated names.
type Disk struct {
	dir string
}

// NewDisk returns a Disk rooted at dir, creating the directory if needed.
func NewDisk(dir string) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Disk{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (d *Disk) Dir() string {
	return d.dir
}

// Save writes r under a fresh unique name that keeps the original extension.
func (d *Disk) Save(originalName string, r io.Reader) (*Blob, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	path := filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating blob: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing blob: %w", err)
	}

	return &Blob{Name: name, Path: path, Size: size}, nil
}

// SaveAs writes data under the given name, replacing any existing blob.
func (d *Disk) SaveAs(name string, data []byte) (*Blob, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing blob: %w", err)
	}
	return &Blob{Name: filepath.Base(path), Path: path, Size: int64(len(data))}, nil
}

// Open opens a stored blob by path.
func (d *Disk) Open(path string) (io.ReadCloser, error) {
	if !d.contains(path) {
		return nil, fmt.Errorf("blob %q is outside the storage directory", path)
	}
	return os.Open(path)
}

// OpenName opens a stored blob by its generated name.
func (d *Disk) OpenName(name string) (*os.File, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a stored blob by path. A blob that is already gone is not
// an error.
func (d *Disk) Remove(path string) error {
	if !d.contains(path) {
		return fmt.Errorf("blob %q is outside the storage directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

func (d *Disk) resolve(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || base != name {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(d.dir, base), nil
}

func (d *Disk) contains(path string) bool {
	rel, err := filepath.Rel(d.dir, filepath.Clean(path))
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
