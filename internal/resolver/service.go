// Package resolver composes the catalog, matcher, escalation router,
// document index, and session store behind one service used by the HTTP
// and MCP surfaces.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/escalation"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/library"
	"github.com/starford/raido/internal/matcher"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/session"
)

// Service coordinates catalog, library, and index operations. The
// catalog itself is immutable; Reload builds a replacement and swaps it
// under the lock, so readers always see a complete, validated catalog.
type Service struct {
	store    library.Provider
	db       index.DocumentIndex
	sessions *session.Store
	logger   *slog.Logger
	events   index.EventSink

	mu  sync.RWMutex
	cat *catalog.Catalog
}

// New creates a service around an already loaded catalog.
func New(store library.Provider, db index.DocumentIndex, cat *catalog.Catalog, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		db:       db,
		sessions: session.NewStore(),
		logger:   logger,
		cat:      cat,
	}
}

// Catalog returns the current catalog snapshot.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Sessions returns the session store.
func (s *Service) Sessions() *session.Store { return s.sessions }

// SetEventSink routes index change notifications (document.indexed,
// document.removed) from Reload's sync to sink.
func (s *Service) SetEventSink(sink index.EventSink) { s.events = sink }

// ResolveResult is a match plus an optional, non-binding escalation
// suggestion for the top hit's skill.
type ResolveResult struct {
	Query      string                 `json:"query"`
	Hits       []matcher.Hit          `json:"hits"`
	Escalation *escalation.Suggestion `json:"escalation,omitempty"`
}

// Resolve matches the query against the catalog and, when something
// matched, annotates the result with the top skill's escalation edges.
// Resolve never fails: an unmatched query yields empty hits.
func (s *Service) Resolve(_ context.Context, query string, limit int) ResolveResult {
	cat := s.Catalog()
	m := matcher.Match(cat, query, limit)

	res := ResolveResult{Query: m.Query, Hits: m.Hits}
	if top := m.TopSkill(); top != "" {
		res.Escalation = escalation.Route(cat, top, query)
	}
	return res
}

// ListSkills returns all skills in declaration order.
func (s *Service) ListSkills(_ context.Context) []models.Skill {
	return s.Catalog().Skills()
}

// GetSkill returns one skill by name.
func (s *Service) GetSkill(_ context.Context, name string) (models.Skill, error) {
	return s.Catalog().Skill(name)
}

// DocumentDetail is the full representation of a loaded document.
type DocumentDetail struct {
	Path        string `json:"path"`
	Skill       string `json:"skill"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Checksum    string `json:"checksum"`
	// FirstLoad is false when this session had already loaded the
	// document, letting hosts skip re-reading content they hold.
	FirstLoad bool `json:"first_load"`
}

// ReadDocument returns a catalog document's content and records the
// load in the given session cache (nil cache skips recording).
func (s *Service) ReadDocument(_ context.Context, path string, cache *session.Cache) (*DocumentDetail, error) {
	doc, err := s.Catalog().Document(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	first := true
	if cache != nil {
		first = !cache.WasLoaded(path)
		cache.RecordLoad(path)
	}

	return &DocumentDetail{
		Path:        doc.Path,
		Skill:       doc.Skill,
		Title:       doc.Title,
		Category:    doc.Category,
		Description: doc.Description,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		FirstLoad:   first,
	}, nil
}

// Search delegates to the full-text document index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ListDocuments returns paginated indexed documents with optional
// skill/category filters.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, skill, category string) ([]index.DocumentRow, int, error) {
	return s.db.ListDocuments(limit, offset, skill, category)
}

// Graph returns the escalation graph of the current catalog.
func (s *Service) Graph(_ context.Context) ([]catalog.GraphNode, []catalog.GraphEdge) {
	return s.Catalog().Graph()
}

// Reload rescans the library and swaps in the rebuilt catalog, then
// syncs the document index. A library that fails validation leaves the
// previous catalog serving; no partial state is ever visible.
func (s *Service) Reload(_ context.Context) error {
	cat, err := catalog.ScanAndLoad(s.store)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()

	if err := index.Sync(s.db, s.store, cat, s.logger, s.events); err != nil {
		s.logger.Warn("reload: index sync failed", slog.String("error", err.Error()))
	}
	return nil
}
