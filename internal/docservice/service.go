// Package docservice loads, saves and catalogues annotated documents. It is
// the only writer of document files and owns the sync step that stamps a
// document's version and update time right before it is serialized.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/preview"
	"github.com/starford/folio/internal/storage"
)

// Change kinds passed to a Notifier.
const (
	ChangeCreated = index.ChangeCreated
	ChangeUpdated = index.ChangeUpdated
	ChangeDeleted = index.ChangeDeleted
)

// Notifier is told about every document the service writes or removes.
type Notifier interface {
	DocumentChanged(kind, path string)
}

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	Path      string           `json:"path"`
	Title     string           `json:"title"`
	Checksum  string           `json:"checksum"`
	Content   string           `json:"content"`
	Document  *models.Document `json:"document"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	DocID     string    `json:"doc_id"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preview is the metadata-free text of a document.
type Preview struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Checksum string `json:"checksum"`
	Text     string `json:"text"`
}

// OutlineEntry is one chapter of a document outline.
type OutlineEntry struct {
	ChapterID string `json:"chapter_id"`
	Anchor    string `json:"anchor"`
	Title     string `json:"title"`
	Level     int    `json:"level"`
}

// Service coordinates storage, the engine and the index.
type Service struct {
	store      storage.Provider
	db         index.DocumentIndex
	serializer *parser.Serializer
	notifier   Notifier
	now        func() time.Time
	defaultTOC bool
	locks      pathLocks
}

// Option configures a Service.
type Option func(*Service)

// WithSerializer replaces the default serializer, e.g. to control id allocation.
func WithSerializer(s *parser.Serializer) Option {
	return func(svc *Service) { svc.serializer = s }
}

// WithNotifier registers a change listener.
func WithNotifier(n Notifier) Option {
	return func(svc *Service) { svc.notifier = n }
}

// WithClock overrides the time source of the sync step.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithDefaultTOC makes newly created documents carry a Table of Contents.
func WithDefaultTOC(on bool) Option {
	return func(svc *Service) { svc.defaultTOC = on }
}

// New creates a document service.
func New(store storage.Provider, db index.DocumentIndex, opts ...Option) *Service {
	s := &Service{
		store:      store,
		db:         db,
		serializer: parser.NewSerializer(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses one document.
func (s *Service) Load(_ context.Context, p string) (*DocumentDetail, error) {
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	return s.detail(p, data, parser.Parse(string(data))), nil
}

// Create writes a new document. A nil doc creates an empty one.
func (s *Service) Create(ctx context.Context, p string, doc *models.Document) (*DocumentDetail, error) {
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(p)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Read(p); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if doc == nil {
		doc = &models.Document{}
	}
	if s.defaultTOC && doc.Metadata.Comments.TOC == nil {
		doc.Metadata.Comments.TOC = &models.TOC{}
	}
	return s.persist(p, doc, ChangeCreated)
}

// Save replaces an existing document. A non-empty ifMatch must equal the
// checksum of the file on disk, otherwise apperr.ErrConflict is returned.
func (s *Service) Save(ctx context.Context, p string, doc *models.Document, ifMatch string) (*DocumentDetail, error) {
	if doc == nil {
		return nil, fmt.Errorf("docservice: save %s: nil document", p)
	}
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(p)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.read(p)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != storage.Checksum(existing) {
		return nil, apperr.ErrConflict
	}
	carryForward(doc, existing)
	return s.persist(p, doc, ChangeUpdated)
}

// Import parses raw text, normalizes it and stores the result, creating or
// replacing the document at p.
func (s *Service) Import(ctx context.Context, p string, raw string) (*DocumentDetail, error) {
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(p)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := parser.Parse(raw)
	kind := ChangeCreated
	if existing, err := s.store.Read(p); err == nil {
		kind = ChangeUpdated
		carryForward(doc, existing)
	}
	return s.persist(p, doc, kind)
}

// Delete removes a document from storage and the index.
func (s *Service) Delete(ctx context.Context, p string) error {
	p, err := s.cleanPath(p)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(p)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Delete(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteDocument(p); err != nil {
		return err
	}
	s.notify(ChangeDeleted, p)
	return nil
}

// Move renames a document. The target must not exist.
func (s *Service) Move(ctx context.Context, from, to string) (*DocumentDetail, error) {
	from, err := s.cleanPath(from)
	if err != nil {
		return nil, err
	}
	to, err = s.cleanPath(to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return s.Load(ctx, from)
	}
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	unlockFirst := s.locks.lock(first)
	defer unlockFirst()
	unlockSecond := s.locks.lock(second)
	defer unlockSecond()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.read(from); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeleteDocument(from); err != nil {
		return nil, err
	}
	data, err := s.read(to)
	if err != nil {
		return nil, err
	}
	if err := index.IndexFile(s.db, to, data); err != nil {
		return nil, fmt.Errorf("docservice: index %s: %w", to, err)
	}
	s.notify(ChangeDeleted, from)
	s.notify(ChangeCreated, to)
	return s.detail(to, data, parser.Parse(string(data))), nil
}

// List returns one page of indexed documents.
func (s *Service) List(_ context.Context, limit, offset int, sort string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			DocID:     r.DocID,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Version:   r.Version,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Preview returns the document with all metadata removed.
func (s *Service) Preview(_ context.Context, p string) (*Preview, error) {
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	text := string(data)
	return &Preview{
		Path:     p,
		Title:    index.Title(parser.Parse(text), p),
		Checksum: storage.Checksum(data),
		Text:     preview.Strip(text),
	}, nil
}

// Outline returns the chapter list of a document. Documents missing from
// the index are indexed on the way.
func (s *Service) Outline(_ context.Context, p string) ([]OutlineEntry, error) {
	p, err := s.cleanPath(p)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.GetDocument(p); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		data, err := s.read(p)
		if err != nil {
			return nil, err
		}
		if err := index.IndexFile(s.db, p, data); err != nil {
			return nil, err
		}
	}
	rows, err := s.db.Chapters(p)
	if err != nil {
		return nil, err
	}
	out := make([]OutlineEntry, len(rows))
	for i, r := range rows {
		out[i] = OutlineEntry{ChapterID: r.ChapterID, Anchor: r.Anchor, Title: r.Title, Level: r.Level}
	}
	return out, nil
}

// persist runs the sync step, serializes, writes and indexes doc.
func (s *Service) persist(p string, doc *models.Document, kind string) (*DocumentDetail, error) {
	s.sync(doc)
	data := []byte(s.serializer.Serialize(doc))
	if err := s.store.Write(p, data); err != nil {
		return nil, err
	}
	if err := index.IndexFile(s.db, p, data); err != nil {
		return nil, fmt.Errorf("docservice: index %s: %w", p, err)
	}
	s.notify(kind, p)
	return s.detail(p, data, doc), nil
}

// carryForward keeps the stored document id and never lets the version
// fall behind the one on disk.
func carryForward(doc *models.Document, existing []byte) {
	stored := parser.Parse(string(existing)).Metadata
	if doc.Metadata.ID == "" {
		doc.Metadata.ID = stored.ID
	}
	doc.Metadata.Version = max(doc.Metadata.Version, stored.Version)
}

// sync bumps the version and stamps the update time.
func (s *Service) sync(doc *models.Document) {
	doc.Metadata.Version++
	doc.Metadata.UpdatedAt = s.now().UTC().Format(time.RFC3339)
}

func (s *Service) detail(p string, data []byte, doc *models.Document) *DocumentDetail {
	updated, err := time.Parse(time.RFC3339, doc.Metadata.UpdatedAt)
	if err != nil {
		updated = time.Time{}
	}
	return &DocumentDetail{
		Path:      p,
		Title:     index.Title(doc, p),
		Checksum:  storage.Checksum(data),
		Content:   string(data),
		Document:  doc,
		UpdatedAt: updated,
	}
}

func (s *Service) read(p string) ([]byte, error) {
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// cleanPath normalizes a library-relative document path.
func (s *Service) cleanPath(p string) (string, error) {
	p = path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))[1:]
	if p == "" || !s.store.IsDocument(p) {
		return "", fmt.Errorf("docservice: %w: %q is not a document path", apperr.ErrInvalidPath, p)
	}
	return p, nil
}

func (s *Service) notify(kind, p string) {
	if s.notifier != nil {
		s.notifier.DocumentChanged(kind, p)
	}
}
