package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/session"
)

// SessionHeader carries the caller's session ID on document reads.
const SessionHeader = "X-Session-ID"

// Handler holds API route handlers.
type Handler struct {
	svc *resolver.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *resolver.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL (everything after
// /documents/). Supports encoded slashes from OpenAPI clients
// (e.g. rails%2FSKILL.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListSkills handles GET /skills.
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills := h.svc.ListSkills(r.Context())
	writeJSON(w, http.StatusOK, SkillListResponse{Skills: skills, Total: len(skills)})
}

// GetSkill handles GET /skills/{name}.
func (h *Handler) GetSkill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, err := h.svc.GetSkill(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("skill not found"))
			return
		}
		slog.Error("get skill failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Resolve handles GET /resolve. An unmatched query is a 200 with empty
// hits, never an error.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.svc.Resolve(r.Context(), q, limit))
}

// GetDocument handles GET /documents/*. When the request carries a
// session ID the load is recorded in that session's cache.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	var cache *session.Cache
	if id := r.Header.Get(SessionHeader); id != "" {
		cache = h.svc.Sessions().Get(id)
		if cache == nil {
			writeJSON(w, http.StatusNotFound, errorBody("unknown session"))
			return
		}
	}

	detail, err := h.svc.ReadDocument(r.Context(), path, cache)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("document not found"))
			return
		}
		slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListDocuments handles GET /documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListDocuments(r.Context(), limit, offset, q.Get("skill"), q.Get("category"))
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]DocumentListItem, len(rows))
	for i, row := range rows {
		items[i] = DocumentListItem{
			Path:        row.Path,
			Skill:       row.Skill,
			Title:       row.Title,
			Category:    row.Category,
			Description: row.Description,
			Checksum:    row.Checksum,
			UpdatedAt:   row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: total})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, edges := h.svc.Graph(r.Context())
	if edges == nil {
		edges = []catalog.GraphEdge{}
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Edges: edges})
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.svc.Sessions().Create()
	writeJSON(w, http.StatusCreated, SessionResponse{ID: id, Loaded: []string{}, Count: 0})
}

// GetSession handles GET /sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cache := h.svc.Sessions().Get(id)
	if cache == nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown session"))
		return
	}
	paths := cache.Paths()
	sort.Strings(paths)
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, Loaded: paths, Count: len(paths)})
}

// DeleteSession handles DELETE /sessions/{id}: the session's cache is
// reset and the session forgotten. Deleting an unknown session is a
// no-op 204.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if cache := h.svc.Sessions().Get(id); cache != nil {
		cache.Reset()
	}
	h.svc.Sessions().End(id)
	w.WriteHeader(http.StatusNoContent)
}
