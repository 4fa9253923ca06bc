package index

import (
	"log/slog"
	"time"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/library"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
)

// EventSink receives notifications as documents enter and leave the
// index. The SSE broker implements it; a nil sink disables events.
type EventSink interface {
	DocumentIndexed(path string)
	DocumentRemoved(path string)
}

// Sync brings the document index in line with the catalog:
//   - new/changed documents are read, parsed, and upserted
//   - documents no longer in the catalog are deleted from the index
//
// Sync is incremental by checksum, so re-running it against an
// unchanged library is cheap. Each successful upsert or delete is
// reported to events.
func Sync(db DocumentIndex, store library.Provider, cat *catalog.Catalog, logger *slog.Logger, events EventSink) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	want := make(map[string]struct{})
	for _, doc := range cat.Documents() {
		want[doc.Path] = struct{}{}

		data, err := store.Read(doc.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
			continue
		}
		cs := checksum.Sum(data)
		if checksums[doc.Path] == cs {
			continue
		}
		if err := indexDocument(db, doc, data, cs); err != nil {
			logger.Warn("sync: index failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", doc.Path))
			if events != nil {
				events.DocumentIndexed(doc.Path)
			}
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := want[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
				if events != nil {
					events.DocumentRemoved(p)
				}
			}
		}
	}

	return nil
}

// indexDocument parses data and upserts it into the DB. Catalog
// metadata wins over anything derived from the file itself.
func indexDocument(db DocumentIndex, doc models.Document, data []byte, cs string) error {
	df := parser.ParseDoc(data)

	title := doc.Title
	if title == "" {
		title = df.Title
	}
	description := doc.Description
	if description == "" {
		description = df.Description
	}

	row := DocumentRow{
		Path:        doc.Path,
		Skill:       doc.Skill,
		Title:       title,
		Category:    doc.Category,
		Description: description,
		Checksum:    cs,
		UpdatedAt:   time.Now(),
	}
	return db.UpsertDocument(row, df.Body)
}
