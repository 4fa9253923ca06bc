// Package catalog builds an immutable, validated index of skills and
// their documents from an ordered sequence of manifest records.
package catalog

import (
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Record describes one skill as read from the manifest, before
// validation. Order of records is the declaration order used for
// ranking tie-breaks.
type Record struct {
	Name        string
	Title       string
	Description string
	Category    string
	Triggers    []string
	Neighbors   []models.Neighbor
	Documents   []models.Document
}

// Catalog is the validated, immutable skill index. Safe for concurrent
// read-only use; construct a new Catalog to change anything.
type Catalog struct {
	skills  []models.Skill
	byName  map[string]int
	docs    []models.Document
	byPath  map[string]int
}

// Load validates records and builds a Catalog. Validation is two-pass:
// field and uniqueness checks happen per record, escalation edges are
// resolved only once every skill name is known, so records may be
// declared in any order. Any failure aborts the whole load; no partial
// catalog is ever returned.
func Load(records []Record) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]int, len(records)),
		byPath: make(map[string]int),
	}

	for i, r := range records {
		if r.Name == "" {
			return nil, &MalformedManifestError{Record: i, Field: "name"}
		}
		if r.Description == "" {
			return nil, &MalformedManifestError{Record: i, Name: r.Name, Field: "description"}
		}
		if _, exists := c.byName[r.Name]; exists {
			return nil, &DuplicateSkillError{Record: i, Name: r.Name}
		}

		category := r.Category
		if category == "" {
			category = models.CategorySkill
		}

		s := models.Skill{
			Name:        r.Name,
			Title:       r.Title,
			Description: r.Description,
			Category:    category,
			Triggers:    r.Triggers,
			Neighbors:   r.Neighbors,
			Documents:   make([]models.Document, 0, len(r.Documents)),
		}
		for _, d := range r.Documents {
			if d.Path == "" {
				return nil, &MalformedManifestError{Record: i, Name: r.Name, Field: "document path"}
			}
			d.Skill = r.Name
			if d.Category == "" {
				d.Category = models.CategoryReference
			}
			s.Documents = append(s.Documents, d)
			if j, dup := c.byPath[d.Path]; dup {
				// Re-declaring a path within its owning skill is harmless;
				// a second skill claiming it breaks exclusive ownership.
				if c.docs[j].Skill != r.Name {
					return nil, &DuplicateDocumentError{Record: i, Name: r.Name, Path: d.Path, Owner: c.docs[j].Skill}
				}
			} else {
				c.byPath[d.Path] = len(c.docs)
				c.docs = append(c.docs, d)
			}
		}

		c.byName[r.Name] = len(c.skills)
		c.skills = append(c.skills, s)
	}

	// Second pass: every escalation edge must land on a loaded skill.
	for _, s := range c.skills {
		for _, n := range s.Neighbors {
			if _, ok := c.byName[n.Skill]; !ok {
				return nil, &DanglingEscalationError{Skill: s.Name, Neighbor: n.Skill}
			}
		}
	}

	return c, nil
}

// Skills returns all skills in declaration order.
func (c *Catalog) Skills() []models.Skill { return c.skills }

// Skill returns the skill with the given name.
func (c *Catalog) Skill(name string) (models.Skill, error) {
	i, ok := c.byName[name]
	if !ok {
		return models.Skill{}, apperr.ErrNotFound
	}
	return c.skills[i], nil
}

// Document returns the document at the given library path.
func (c *Catalog) Document(path string) (models.Document, error) {
	i, ok := c.byPath[path]
	if !ok {
		return models.Document{}, apperr.ErrNotFound
	}
	return c.docs[i], nil
}

// Documents returns every document in declaration order.
func (c *Catalog) Documents() []models.Document { return c.docs }

// Len returns the number of skills.
func (c *Catalog) Len() int { return len(c.skills) }

// GraphNode is a skill node in the escalation graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphEdge is a directed escalation edge between two skills.
type GraphEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
}

// Graph returns the escalation graph: one node per skill, one edge per
// neighbor declaration. The closure invariant from Load guarantees every
// edge target exists.
func (c *Catalog) Graph() ([]GraphNode, []GraphEdge) {
	nodes := make([]GraphNode, 0, len(c.skills))
	var edges []GraphEdge
	for _, s := range c.skills {
		title := s.Title
		if title == "" {
			title = s.Name
		}
		nodes = append(nodes, GraphNode{ID: s.Name, Title: title})
		for _, n := range s.Neighbors {
			edges = append(edges, GraphEdge{Source: s.Name, Target: n.Skill, Condition: n.Condition})
		}
	}
	return nodes, edges
}
