package placestore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
)

// ValkeyStore caches resolved places in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "geocode"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (geo.Coordinate, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return geo.Coordinate{}, false, nil
		}
		return geo.Coordinate{}, false, err
	}
	var coord geo.Coordinate
	if err := json.Unmarshal([]byte(payload), &coord); err != nil {
		return geo.Coordinate{}, false, err
	}
	return coord, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, coord geo.Coordinate, ttl time.Duration) error {
	payload, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return s.prefix + ":place:" + key
}

var _ geo.Store = (*ValkeyStore)(nil)
