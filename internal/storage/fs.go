package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// DefaultExtension is the file extension of documents unless configured otherwise.
const DefaultExtension = ".md"

const tmpPattern = ".folio-tmp-*"

// FS implements Provider on the local file system.
type FS struct {
	root string // absolute library directory
	ext  string
}

// FSOption configures an FS.
type FSOption func(*FS)

// WithExtension sets the document file extension, e.g. ".md".
func WithExtension(ext string) FSOption {
	return func(f *FS) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.ext = ext
	}
}

// NewFS creates an FS rooted at an existing directory.
func NewFS(root string, opts ...FSOption) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs, ext: DefaultExtension}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the absolute library directory.
func (f *FS) Root() string { return f.root }

// Extension returns the document file extension.
func (f *FS) Extension() string { return f.ext }

// IsDocument implements Provider.
func (f *FS) IsDocument(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, f.ext) && !strings.HasPrefix(base, ".")
}

// resolve maps a library-relative path to an absolute one, rejecting
// anything that lands outside the root.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: %w: absolute path %s", apperr.ErrInvalidPath, rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: %w: %s escapes the library root", apperr.ErrInvalidPath, rel)
	}
	return abs, nil
}

// Rel converts an absolute path under the root to a library-relative one.
func (f *FS) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: %w: %s is outside the library root", apperr.ErrInvalidPath, abs)
	}
	return filepath.ToSlash(rel), nil
}

// List implements Provider.
func (f *FS) List(dir string) ([]models.FileMetadata, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.FileMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !f.IsDocument(p) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := f.Rel(p)
		if err != nil {
			return err
		}
		out = append(out, models.FileMetadata{
			Path:      rel,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read implements Provider.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write implements Provider: temp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	committed = true
	return nil
}

// Delete implements Provider.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move implements Provider.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.resolve(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Checksum returns the hex SHA-256 digest of data. It doubles as the
// optimistic-concurrency token for saves.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
