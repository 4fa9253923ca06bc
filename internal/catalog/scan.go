package catalog

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/raido/internal/library"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
)

// Scan reads every SKILL.md in the library and assembles manifest
// records in deterministic (sorted path) order. Glob document entries
// are expanded against the skill's directory; expanded files and path
// entries without a description are parsed so titles and descriptions
// can be derived from the files themselves.
//
// Scan only assembles records; all validation is Load's job. A SKILL.md
// that cannot be parsed at all surfaces as a record with a blank name so
// the load fails with the file identified.
func Scan(store library.Provider) ([]Record, error) {
	files, err := store.SkillFiles()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(files))
	for _, sf := range files {
		rec, err := scanSkill(store, sf)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan %s: %w", sf, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ScanAndLoad is the common startup path: Scan then Load.
func ScanAndLoad(store library.Provider) (*Catalog, error) {
	records, err := Scan(store)
	if err != nil {
		return nil, err
	}
	return Load(records)
}

func scanSkill(store library.Provider, skillFile string) (Record, error) {
	data, err := store.Read(skillFile)
	if err != nil {
		return Record{}, err
	}
	sf, err := parser.ParseSkill(data)
	if err != nil {
		// Leave Name blank so Load rejects the record while still
		// pointing at its position in the manifest sequence.
		return Record{}, nil //nolint:nilerr
	}

	dir := path.Dir(skillFile)

	rec := Record{
		Name:        sf.Name,
		Title:       sf.Title,
		Description: sf.Description,
		Category:    sf.Category,
		Triggers:    sf.Triggers,
	}
	for _, n := range sf.Neighbors {
		rec.Neighbors = append(rec.Neighbors, models.Neighbor{Skill: n.Skill, Condition: n.When})
	}

	// The skill file itself is the skill's root document.
	rec.Documents = append(rec.Documents, models.Document{
		Path:        skillFile,
		Title:       sf.Title,
		Description: sf.Description,
		Category:    models.CategorySkill,
	})

	for _, entry := range sf.Documents {
		docs, err := expandEntry(store, dir, entry)
		if err != nil {
			return Record{}, err
		}
		rec.Documents = append(rec.Documents, docs...)
	}
	return rec, nil
}

// expandEntry turns one document declaration into concrete documents.
func expandEntry(store library.Provider, dir string, entry parser.DocumentEntry) ([]models.Document, error) {
	category := entry.Category
	if category == "" {
		category = models.CategoryReference
	}

	if entry.Glob != "" {
		return expandGlob(store, dir, entry.Glob, category)
	}
	if entry.Path == "" {
		// Load reports this as MalformedManifest.
		return []models.Document{{}}, nil
	}

	doc := models.Document{
		Path:        path.Join(dir, entry.Path),
		Title:       entry.Title,
		Description: entry.Description,
		Category:    category,
	}
	if doc.Title == "" || doc.Description == "" {
		fillFromFile(store, &doc)
	}
	return []models.Document{doc}, nil
}

func expandGlob(store library.Provider, dir, pattern, category string) ([]models.Document, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid document glob: %q", pattern)
	}
	metas, err := store.List(dir)
	if err != nil {
		return nil, err
	}

	var out []models.Document
	for _, m := range metas {
		rel := strings.TrimPrefix(m.Path, dir+"/")
		if rel == library.SkillFileName {
			continue
		}
		if ok, _ := doublestar.Match(pattern, rel); !ok {
			continue
		}
		doc := models.Document{Path: m.Path, Category: category}
		fillFromFile(store, &doc)
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// fillFromFile derives missing title/description from the document
// file's own front-matter or body. Unreadable files keep blank fields;
// they only affect ranking, not validity.
func fillFromFile(store library.Provider, doc *models.Document) {
	data, err := store.Read(doc.Path)
	if err != nil {
		return
	}
	df := parser.ParseDoc(data)
	if doc.Title == "" {
		doc.Title = df.Title
	}
	if doc.Description == "" {
		doc.Description = df.Description
	}
}
