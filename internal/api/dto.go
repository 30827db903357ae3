package api

import (
	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
)

// CreateDocumentRequest creates a document from a tree or from raw text.
// When Content is set it is parsed and Document is ignored.
type CreateDocumentRequest struct {
	Path     string           `json:"path" example:"guides/setup.md" validate:"required"`
	Content  string           `json:"content,omitempty" example:"## Setup\n\nInstall the tools."`
	Document *models.Document `json:"document,omitempty"`
}

// UpdateDocumentRequest replaces a document with a tree or raw text.
type UpdateDocumentRequest struct {
	Content  string           `json:"content,omitempty"`
	Document *models.Document `json:"document,omitempty"`
}

// ImportRequest stores hand-written text in canonical form.
type ImportRequest struct {
	Path    string `json:"path" example:"imported/notes.md" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// MoveRequest renames a document.
type MoveRequest struct {
	From string `json:"from" example:"drafts/setup.md" validate:"required"`
	To   string `json:"to" example:"guides/setup.md" validate:"required"`
}

// DocumentDetail is the full document response type.
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is one item of a list response.
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// OutlineResponse lists the chapters of one document.
type OutlineResponse struct {
	Path     string                    `json:"path" validate:"required"`
	Chapters []docservice.OutlineEntry `json:"chapters" validate:"required"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Path    string `json:"path" example:"guides/setup.md" validate:"required"`
	Title   string `json:"title" example:"Setup" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
