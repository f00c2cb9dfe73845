package placestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
)

func TestMemoryStoreSaveAndExpire(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	coord := geo.Coordinate{Longitude: 116.4, Latitude: 39.9, FormattedAddress: "北京市"}

	require.NoError(t, store.Save(context.Background(), "北京市", coord, time.Minute))
	got, ok, err := store.Get(context.Background(), "北京市")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, coord, got)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Get(context.Background(), "北京市")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreWithoutTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), "k", geo.Coordinate{Longitude: 1}, 0))

	now = now.Add(24 * 365 * time.Hour)
	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestValkeyEntryKey(t *testing.T) {
	require.Equal(t, "geocode:place:合肥", NewValkeyStore(nil, "").entryKey("合肥"))
	require.Equal(t, "x:place:k", NewValkeyStore(nil, "x").entryKey("k"))
}
