// Package models defines the domain types for Raido.
package models

import "time"

// Document categories. A skill's root document is category "skill";
// supporting files are references, handbook entries, commands, or agents.
const (
	CategorySkill     = "skill"
	CategoryReference = "reference"
	CategoryHandbook  = "handbook"
	CategoryCommand   = "command"
	CategoryAgent     = "agent"
)

// ValidCategory reports whether c is one of the known document categories.
func ValidCategory(c string) bool {
	switch c {
	case CategorySkill, CategoryReference, CategoryHandbook, CategoryCommand, CategoryAgent:
		return true
	}
	return false
}

// Document identifies one loadable unit within a skill. Immutable once
// loaded from the manifest.
type Document struct {
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Skill       string `json:"skill"`
	Category    string `json:"category"`
}

// Neighbor is a named escalation edge from one skill to another.
// Condition is free text describing when to escalate; it is a hint for
// the consuming host, never evaluated by Raido itself.
type Neighbor struct {
	Skill     string `json:"skill"`
	Condition string `json:"condition,omitempty"`
}

// Skill is a named grouping of documents plus trigger phrases and
// escalation edges. Neighbors reference other skills by name only.
type Skill struct {
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Triggers    []string   `json:"triggers,omitempty"`
	Neighbors   []Neighbor `json:"neighbors,omitempty"`
	Documents   []Document `json:"documents"`
}

// DocumentMeta is a lightweight representation returned by library scans.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
