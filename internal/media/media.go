// Package media stores uploaded item photos on disk.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ItemImagesDir is the subdirectory (and reference prefix) for item photos.
const ItemImagesDir = "item_images"

// Store saves files below a root directory and hands out references relative to it.
type Store struct {
	Root string
}

// New creates the media root and the item image directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, ItemImagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &Store{Root: root}, nil
}

// SaveItemImage writes JPEG data under a fresh name and returns its reference,
// e.g. "item_images/3f1c....jpg".
func (s *Store) SaveItemImage(data []byte) (string, error) {
	ref := path.Join(ItemImagesDir, uuid.NewString()+".jpg")

	tmp, err := os.CreateTemp(filepath.Join(s.Root, ItemImagesDir), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing image file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("setting image permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(ref)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storing image file: %w", err)
	}

	return ref, nil
}

// Remove deletes the file behind ref. Missing files and empty refs are ignored.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	if !validRef(ref) {
		return fmt.Errorf("invalid media reference %q", ref)
	}
	err := os.Remove(s.path(ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing media file: %w", err)
	}
	return nil
}

// Exists reports whether ref points at a stored file.
func (s *Store) Exists(ref string) bool {
	if !validRef(ref) {
		return false
	}
	_, err := os.Stat(s.path(ref))
	return err == nil
}

// Handler serves stored files. Directory listings are disabled.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.Root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

func (s *Store) path(ref string) string {
	return filepath.Join(s.Root, filepath.FromSlash(ref))
}

// validRef accepts only references produced by SaveItemImage.
func validRef(ref string) bool {
	dir, name := path.Split(ref)
	return dir == ItemImagesDir+"/" && name != "" && !strings.HasPrefix(name, ".") &&
		path.Clean(ref) == ref && !strings.Contains(name, "..")
}
