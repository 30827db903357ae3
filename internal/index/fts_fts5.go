//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, body string) error {
	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO documents_fts (path, title, body) VALUES (?, ?, ?)`, path, title, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM documents_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// Search runs an FTS5 query and returns ranked hits with highlighted snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(documents_fts, 2, '<b>', '</b>', '...', 64)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
