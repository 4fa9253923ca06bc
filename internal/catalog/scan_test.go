package catalog_test

import (
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func TestScanAndLoad_Library(t *testing.T) {
	root, store := testutil.TestLibrary(t)

	testutil.WriteSkill(t, root, "turbo-navigation", `---
name: turbo-navigation
description: Frames and drive patterns.
triggers: [turbo frame]
documents:
  - path: references/frames.md
    description: Frame targeting
---
# Turbo Navigation
`)
	testutil.WriteFile(t, root, "turbo-navigation/references/frames.md", "# Frames\n\nTargeting and lazy loading.\n")

	c, err := catalog.ScanAndLoad(store)
	if err != nil {
		t.Fatalf("ScanAndLoad: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("skills = %d", c.Len())
	}

	// The SKILL.md is the skill's root document.
	doc, err := c.Document("turbo-navigation/SKILL.md")
	if err != nil {
		t.Fatalf("root document missing: %v", err)
	}
	if doc.Category != models.CategorySkill {
		t.Errorf("root category = %q", doc.Category)
	}

	ref, err := c.Document("turbo-navigation/references/frames.md")
	if err != nil {
		t.Fatalf("reference missing: %v", err)
	}
	if ref.Description != "Frame targeting" {
		t.Errorf("description = %q", ref.Description)
	}
	if ref.Title != "Frames" {
		t.Errorf("title should derive from the file, got %q", ref.Title)
	}
}

func TestScan_GlobExpansion(t *testing.T) {
	root, store := testutil.TestLibrary(t)

	testutil.WriteSkill(t, root, "stimulus", `---
name: stimulus
description: Stimulus controllers.
documents:
  - glob: references/*.md
    category: handbook
---
`)
	testutil.WriteFile(t, root, "stimulus/references/lifecycle.md", "# Lifecycle\n\nConnect and disconnect.\n")
	testutil.WriteFile(t, root, "stimulus/references/values.md", "# Values\n\nTyped values API.\n")
	testutil.WriteFile(t, root, "stimulus/notes.md", "# Not matched\n")

	c, err := catalog.ScanAndLoad(store)
	if err != nil {
		t.Fatalf("ScanAndLoad: %v", err)
	}

	docs := c.Documents()
	// SKILL.md + two globbed references, sorted; notes.md not matched.
	if len(docs) != 3 {
		t.Fatalf("docs = %d: %+v", len(docs), docs)
	}
	if docs[1].Path != "stimulus/references/lifecycle.md" || docs[2].Path != "stimulus/references/values.md" {
		t.Errorf("glob order: %q, %q", docs[1].Path, docs[2].Path)
	}
	if docs[1].Category != models.CategoryHandbook {
		t.Errorf("category = %q", docs[1].Category)
	}
	if docs[1].Title != "Lifecycle" {
		t.Errorf("derived title = %q", docs[1].Title)
	}
}

func TestScanAndLoad_BadSkillFileFailsLoad(t *testing.T) {
	root, store := testutil.TestLibrary(t)

	testutil.WriteSkill(t, root, "ok", "---\nname: ok\ndescription: fine\n---\n")
	// No front-matter at all: the record surfaces with a blank name and
	// the load fails identifying its position.
	testutil.WriteSkill(t, root, "broken", "# no front-matter here\n")

	_, err := catalog.ScanAndLoad(store)
	if !errors.Is(err, apperr.ErrMalformedManifest) {
		t.Fatalf("err = %v, want MalformedManifest", err)
	}
	var me *catalog.MalformedManifestError
	if !errors.As(err, &me) {
		t.Fatal("expected *catalog.MalformedManifestError")
	}
	// Skill files scan in sorted order: broken/SKILL.md is record 0.
	if me.Record != 0 {
		t.Errorf("record = %d, want 0", me.Record)
	}
}

func TestScanAndLoad_DanglingNeighbor(t *testing.T) {
	root, store := testutil.TestLibrary(t)

	testutil.WriteSkill(t, root, "a", `---
name: a
description: alpha
neighbors:
  - skill: missing
    when: never
---
`)
	_, err := catalog.ScanAndLoad(store)
	if !errors.Is(err, apperr.ErrDanglingEscalation) {
		t.Fatalf("err = %v, want DanglingEscalation", err)
	}
}

func TestScan_Deterministic(t *testing.T) {
	root, store := testutil.TestLibrary(t)
	testutil.WriteSkill(t, root, "b", "---\nname: b\ndescription: beta\n---\n")
	testutil.WriteSkill(t, root, "a", "---\nname: a\ndescription: alpha\n---\n")

	r1, err := catalog.Scan(store)
	if err != nil {
		t.Fatal(err)
	}
	// Sorted by path regardless of creation order.
	if r1[0].Name != "a" || r1[1].Name != "b" {
		t.Errorf("order = %q, %q", r1[0].Name, r1[1].Name)
	}

	r2, err := catalog.Scan(store)
	if err != nil {
		t.Fatal(err)
	}
	if len(r1) != len(r2) || r1[0].Name != r2[0].Name {
		t.Error("scan should be deterministic")
	}
}
