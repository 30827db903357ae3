package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// documentPath extracts the path after the route prefix. Encoded slashes
// (guides%2Fsetup.md) are accepted.
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("document already exists"))
	case errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document path"))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// treeFrom picks the document carried by a create or update body.
func treeFrom(content string, doc *models.Document) (*models.Document, bool) {
	if content != "" {
		return parser.Parse(content), true
	}
	return doc, doc != nil
}

// ListDocuments handles GET /documents.
//
//	@Summary		List documents with pagination
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(path, title, updated)
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), limit, offset, q.Get("sort"))
	if err != nil {
		writeServiceError(w, "list documents", "", err)
		return
	}
	if items == nil {
		items = []DocumentListItem{}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: total})
}

// GetDocument handles GET /documents/*.
//
//	@Summary		Get one parsed document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.Load(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get document", path, err)
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /documents.
//
//	@Summary		Create a new document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	tree, _ := treeFrom(req.Content, req.Document)

	doc, err := h.svc.Create(r.Context(), req.Path, tree)
	if err != nil {
		writeServiceError(w, "create document", req.Path, err)
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /documents/*.
//
//	@Summary		Replace a document with optimistic concurrency
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum of the stored file"
//	@Param			body		body	UpdateDocumentRequest	true	"Replacement"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateDocumentRequest
	if !readJSON(w, r, &req) {
		return
	}
	tree, ok := treeFrom(req.Content, req.Document)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("content or document is required"))
		return
	}

	ifMatch := ifMatchChecksum(r)
	doc, err := h.svc.Save(r.Context(), path, tree, ifMatch)
	if err != nil {
		writeServiceError(w, "update document", path, err)
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /documents/*.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		writeServiceError(w, "delete document", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /import.
//
//	@Summary		Store hand-written text in canonical form
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Raw text"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.Import(r.Context(), req.Path, req.Content)
	if err != nil {
		writeServiceError(w, "import document", req.Path, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Move handles POST /move.
//
//	@Summary		Rename a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveRequest	true	"Source and target paths"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/move [post]
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	doc, err := h.svc.Move(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, "move document", req.From, err)
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusOK, doc)
}

// Preview handles GET /preview/*. The response is plain Markdown unless
// the client asks for JSON.
//
//	@Summary		Document text without metadata
//	@Tags			documents
//	@Produce		plain
//	@Produce		json
//	@Param			path	path	string	true	"Document path"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preview/{path} [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	pv, err := h.svc.Preview(r.Context(), path)
	if err != nil {
		writeServiceError(w, "preview document", path, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, pv)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	setETag(w, pv.Checksum)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(pv.Text))
}

// Outline handles GET /outline/*.
//
//	@Summary		Chapter list of a document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	OutlineResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outline/{path} [get]
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	chapters, err := h.svc.Outline(r.Context(), path)
	if err != nil {
		writeServiceError(w, "outline", path, err)
		return
	}
	writeJSON(w, http.StatusOK, OutlineResponse{Path: path, Chapters: chapters})
}

// Search handles GET /search.
//
//	@Summary		Full-text search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
