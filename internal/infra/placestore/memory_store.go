package placestore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
)

type entry struct {
	coord     geo.Coordinate
	expiresAt time.Time
}

// MemoryStore is an in-memory geo.Store for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements geo.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (geo.Coordinate, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return geo.Coordinate{}, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return geo.Coordinate{}, false, nil
	}
	return e.coord, true, nil
}

// Save caches the coordinate with optional TTL.
func (s *MemoryStore) Save(_ context.Context, key string, coord geo.Coordinate, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[key] = entry{coord: coord, expiresAt: exp}
	return nil
}

var _ geo.Store = (*MemoryStore)(nil)
