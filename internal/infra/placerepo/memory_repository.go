package placerepo

import (
	"context"
	"sync"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
)

// MemoryRepository is a process-local geo.Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	places map[string]geo.Coordinate
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{places: make(map[string]geo.Coordinate)}
}

// Find implements geo.Repository.
func (r *MemoryRepository) Find(_ context.Context, key string) (geo.Coordinate, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coord, ok := r.places[key]
	return coord, ok, nil
}

// Upsert implements geo.Repository.
func (r *MemoryRepository) Upsert(_ context.Context, key string, coord geo.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.places[key] = coord
	return nil
}

var _ geo.Repository = (*MemoryRepository)(nil)
