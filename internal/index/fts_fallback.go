//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the documents.body column is searched with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query as a substring of title or body.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, substr(body, 1, 200)
		FROM documents
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY path
		LIMIT ?
	`, like, like, limit)
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
