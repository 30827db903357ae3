// Package index keeps a SQLite catalogue of the document library: one row
// per document, its chapter outline, and a searchable plain-text body.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	doc_id     TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	version    INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_id ON documents(doc_id);

CREATE TABLE IF NOT EXISTS chapters (
	path       TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	chapter_id TEXT NOT NULL DEFAULT '',
	anchor     TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	level      INTEGER NOT NULL DEFAULT 2,
	PRIMARY KEY (path, position)
);

CREATE INDEX IF NOT EXISTS idx_chapters_anchor ON chapters(anchor);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
