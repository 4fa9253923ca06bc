// Package session tracks which documents have been loaded during one
// session, so hosts can avoid redundant loads. Nothing here persists:
// a session lives and dies with its process or its explicit reset.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache remembers document loads for a single session. Entry count is
// bounded by the library's document count, so there is no eviction.
type Cache struct {
	mu     sync.Mutex
	loaded map[string]time.Time
}

// NewCache creates an empty session cache.
func NewCache() *Cache {
	return &Cache{loaded: make(map[string]time.Time)}
}

// RecordLoad marks a document as loaded. Re-recording an already loaded
// path keeps the original timestamp (idempotent by key).
func (c *Cache) RecordLoad(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.loaded[path]; !ok {
		c.loaded[path] = time.Now()
	}
}

// WasLoaded reports whether the document was loaded in this session.
func (c *Cache) WasLoaded(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loaded[path]
	return ok
}

// LoadedAt returns the first-load time of a document, or the zero time
// when it has not been loaded.
func (c *Cache) LoadedAt(path string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[path]
}

// Paths returns the loaded document paths in no particular order.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.loaded))
	for p := range c.loaded {
		out = append(out, p)
	}
	return out
}

// Len returns the number of loaded documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.loaded)
}

// Reset clears all entries. This is the only way memory is released.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = make(map[string]time.Time)
}

// Store tracks the caches of concurrently running sessions, keyed by
// UUID. HTTP callers carry the ID in a header; the MCP server owns a
// single session for its process lifetime.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Cache
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Cache)}
}

// Create registers a new session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = NewCache()
	return id
}

// Get returns the cache for id, or nil when the session is unknown.
func (s *Store) Get(id string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// GetOrCreate returns the cache for id, registering it on first use.
// Callers that bring their own stable identifier (e.g. an MCP client
// name) get a session without an explicit Create round-trip.
func (s *Store) GetOrCreate(id string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		c = NewCache()
		s.sessions[id] = c
	}
	return c
}

// End removes a session entirely. Unknown IDs are a no-op.
func (s *Store) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
