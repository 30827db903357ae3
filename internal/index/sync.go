package index

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/preview"
	"github.com/starford/folio/internal/storage"
)

// Sync brings the index in line with the library: new and changed files
// are parsed and upserted, files gone from disk are dropped.
func Sync(db DocumentIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
	}
	return nil
}

// IndexFile parses raw document text and upserts it.
func IndexFile(db DocumentIndex, p string, data []byte) error {
	text := string(data)
	doc := parser.Parse(text)
	row := DocumentRow{
		Path:      p,
		DocID:     doc.Metadata.ID,
		Title:     Title(doc, p),
		Checksum:  storage.Checksum(data),
		Version:   doc.Metadata.Version,
		UpdatedAt: updatedAt(doc.Metadata.UpdatedAt),
	}
	return db.UpsertDocument(row, preview.Strip(text), Outline(doc))
}

// Outline lists the chapters of doc as index rows.
func Outline(doc *models.Document) []ChapterRow {
	out := make([]ChapterRow, 0, len(doc.Chapters))
	for i, ch := range doc.Chapters {
		out = append(out, ChapterRow{
			Position:  i,
			ChapterID: ch.ID,
			Anchor:    ch.Anchor(),
			Title:     ch.Heading.Text,
			Level:     ch.Heading.Level,
		})
	}
	return out
}

// Title picks a display title: the metadata title, then the first chapter
// heading, then the file name.
func Title(doc *models.Document, p string) string {
	if t := strings.TrimSpace(doc.Metadata.Title); t != "" {
		return t
	}
	if len(doc.Chapters) > 0 && doc.Chapters[0].Heading.Text != parser.SyntheticHeadingText {
		if t := strings.TrimSpace(doc.Chapters[0].Heading.Text); t != "" {
			return t
		}
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func updatedAt(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
