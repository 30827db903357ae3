package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/folio/internal/apperr"
)

// DocumentRow is a row in the documents table.
type DocumentRow struct {
	Path      string
	DocID     string
	Title     string
	Checksum  string
	Version   int64
	UpdatedAt time.Time
}

// ChapterRow is one outline entry of a document.
type ChapterRow struct {
	Position  int
	ChapterID string
	Anchor    string
	Title     string
	Level     int
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// Sort orders accepted by ListDocuments.
const (
	SortPath    = "path"
	SortTitle   = "title"
	SortUpdated = "updated"
)

var sortClauses = map[string]string{
	SortPath:    "path ASC",
	SortTitle:   "title COLLATE NOCASE ASC, path ASC",
	SortUpdated: "updated_at DESC, path ASC",
}

// UpsertDocument replaces a document row, its search entry and its outline
// in one transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string, chapters []ChapterRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO documents (path, doc_id, title, checksum, version, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			doc_id     = excluded.doc_id,
			title      = excluded.title,
			checksum   = excluded.checksum,
			version    = excluded.version,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.DocID, d.Title, d.Checksum, d.Version, body, d.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, d.Path, d.Title, body); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM chapters WHERE path = ?`, d.Path); err != nil {
		return fmt.Errorf("index: clear chapters: %w", err)
	}
	if len(chapters) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO chapters (path, position, chapter_id, anchor, title, level) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare chapter insert: %w", err)
		}
		defer stmt.Close()
		for _, c := range chapters {
			if _, err := stmt.Exec(d.Path, c.Position, c.ChapterID, c.Anchor, c.Title, c.Level); err != nil {
				return fmt.Errorf("index: insert chapter: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its search entry and its outline.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chapters WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete chapters: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or "" if it is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetDocument returns one document row or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	var d DocumentRow
	err := db.conn.QueryRow(`
		SELECT path, doc_id, title, checksum, version, updated_at
		FROM documents WHERE path = ?
	`, path).Scan(&d.Path, &d.DocID, &d.Title, &d.Checksum, &d.Version, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &d, nil
}

// ListDocuments returns one page of documents and the total count.
func (db *DB) ListDocuments(limit, offset int, sort string) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	order, ok := sortClauses[sort]
	if !ok {
		order = sortClauses[SortPath]
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, doc_id, title, checksum, version, updated_at
		FROM documents
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.Path, &d.DocID, &d.Title, &d.Checksum, &d.Version, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Chapters returns the outline of a document in document order.
func (db *DB) Chapters(path string) ([]ChapterRow, error) {
	rows, err := db.conn.Query(`
		SELECT position, chapter_id, anchor, title, level
		FROM chapters WHERE path = ?
		ORDER BY position
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: chapters: %w", err)
	}
	defer rows.Close()

	var out []ChapterRow
	for rows.Next() {
		var c ChapterRow
		if err := rows.Scan(&c.Position, &c.ChapterID, &c.Anchor, &c.Title, &c.Level); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllChecksums maps every indexed path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
