// Package testutil provides shared test helpers for setting up libraries,
// indexes and document services.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// TestDB creates a temporary SQLite index that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "folio-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary document library.
func TestLibrary(t *testing.T) (string, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// TestService wires a library, an index and a document service that
// allocates sequential ids ("doc-1", "ch-2", ...).
func TestService(t *testing.T, opts ...docservice.Option) (*docservice.Service, *storage.FS, *index.DB) {
	t.Helper()
	_, store := TestLibrary(t)
	db := TestDB(t)
	seq := parser.NewSerializer(parser.WithIDGenerator(&parser.SequenceGenerator{}))
	opts = append([]docservice.Option{docservice.WithSerializer(seq)}, opts...)
	return docservice.New(store, db, opts...), store, db
}
