// Package storage gives the document service byte-level access to the
// document library on disk.
package storage

import "github.com/starford/folio/internal/models"

// Provider loads and saves raw document text. Paths are relative to the
// library root and use forward slashes.
type Provider interface {
	// List describes every document file under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the document at path.
	Write(path string, content []byte) error
	// Delete removes the document at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// IsDocument reports whether path names a document file.
	IsDocument(path string) bool
}
