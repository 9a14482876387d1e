// Package storage keeps uploaded bytes on local disk under generated names.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const uploadsDir = "uploads"

// FileStore persists opaque bytes and hands back a relative path.
type FileStore interface {
	Put(r io.Reader, ext string) (string, error)
	Path(rel string) (string, error)
	Delete(rel string) error
}

type diskStore struct {
	root string
}

// NewDiskStore returns a FileStore rooted at dir.
func NewDiskStore(dir string) FileStore {
	return &diskStore{root: dir}
}

// Put streams r into uploads/<uuid>.<ext> and returns that relative path.
func (s *diskStore) Put(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "", fmt.Errorf("store file: empty extension")
	}

	if err := os.MkdirAll(filepath.Join(s.root, uploadsDir), 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(uploadsDir, uuid.NewString()+"."+ext))
	abs := filepath.Join(s.root, filepath.FromSlash(rel))

	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(abs)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(abs)
		return "", fmt.Errorf("close file: %w", err)
	}

	return rel, nil
}

// Path resolves a relative path returned by Put. Paths escaping the root are rejected.
func (s *diskStore) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid stored path %q", rel)
	}
	return filepath.Join(s.root, clean), nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *diskStore) Delete(rel string) error {
	abs, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
