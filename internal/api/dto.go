package api

import (
	"time"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/resolver"
)

// SkillListResponse wraps the skill listing.
type SkillListResponse struct {
	Skills []models.Skill `json:"skills"`
	Total  int            `json:"total"`
}

// ResolveResponse is the body returned by GET /resolve (aliased from
// the domain layer).
type ResolveResponse = resolver.ResolveResult

// DocumentDetail is the full document response type (aliased from the
// domain layer).
type DocumentDetail = resolver.DocumentDetail

// DocumentListItem is a lightweight item in a document list response.
type DocumentListItem struct {
	Path        string    `json:"path"`
	Skill       string    `json:"skill"`
	Title       string    `json:"title,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// GraphResponse wraps the escalation graph.
type GraphResponse struct {
	Nodes []catalog.GraphNode `json:"nodes"`
	Edges []catalog.GraphEdge `json:"edges"`
}

// SessionResponse describes one session's load history.
type SessionResponse struct {
	ID     string   `json:"id"`
	Loaded []string `json:"loaded"`
	Count  int      `json:"count"`
}
