package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{
		Path:        "rails/SKILL.md",
		Skill:       "rails",
		Title:       "Rails",
		Category:    "skill",
		Description: "Rails conventions.",
		Checksum:    "abc123",
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertDocument(row, "MVC conventions and generators."); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	got, err := db.GetDocument("rails/SKILL.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Skill != "rails" || got.Checksum != "abc123" {
		t.Errorf("got %+v", got)
	}

	// Upsert replaces.
	row.Checksum = "def456"
	if err := db.UpsertDocument(row, "updated body"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetDocument("rails/SKILL.md")
	if got.Checksum != "def456" {
		t.Errorf("checksum = %q, want def456", got.Checksum)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetDocument("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, "body")

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := db.GetDocument("del.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("document should be gone")
	}
}

func TestListDocuments_Filters(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "a/SKILL.md", Skill: "a", Category: "skill", UpdatedAt: now}, "")
	_ = db.UpsertDocument(DocumentRow{Path: "a/ref.md", Skill: "a", Category: "reference", UpdatedAt: now}, "")
	_ = db.UpsertDocument(DocumentRow{Path: "b/SKILL.md", Skill: "b", Category: "skill", UpdatedAt: now}, "")

	rows, total, err := db.ListDocuments(0, 0, "a", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("skill filter: total = %d rows = %d", total, len(rows))
	}

	rows, total, err = db.ListDocuments(0, 0, "", "skill")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("category filter: total = %d rows = %d", total, len(rows))
	}

	rows, total, err = db.ListDocuments(1, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 1 {
		t.Errorf("pagination: total = %d rows = %d", total, len(rows))
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "a.md", Checksum: "1", UpdatedAt: now}, "")
	_ = db.UpsertDocument(DocumentRow{Path: "b.md", Checksum: "2", UpdatedAt: now}, "")

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs["a.md"] != "1" || cs["b.md"] != "2" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{
		Path: "rails/caching.md", Skill: "rails", Title: "Caching",
		Description: "Fragment caching.", UpdatedAt: time.Now(),
	}, "Russian doll caching with touch: true.")

	results, err := db.Search("caching", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "rails/caching.md" {
		t.Errorf("results = %+v", results)
	}
	if results[0].Skill != "rails" {
		t.Errorf("skill = %q", results[0].Skill)
	}

	results, err = db.Search("zzzznothing", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits, got %+v", results)
	}
}
