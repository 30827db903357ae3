package models

import "time"

// FileMetadata is a lightweight description of a document file in the vault,
// returned by storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
