//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{Path: "fts.md", Title: "FTS Document", Checksum: "f1", UpdatedAt: time.Now()}
	if err := db.UpsertDocument(row, "Folio keeps powerful metadata beside the prose.", nil); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "fts.md" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "gone.md", Checksum: "g", UpdatedAt: time.Now()}, "vanishing content", nil)
	_ = db.DeleteDocument("gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.md" {
			t.Error("deleted document still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "evo.md", Title: "Old", Checksum: "1", UpdatedAt: now}, "original text", nil)
	_ = db.UpsertDocument(DocumentRow{Path: "evo.md", Title: "New", Checksum: "2", UpdatedAt: now}, "replacement text", nil)

	if results, _ := db.Search("original", 10); len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ := db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
