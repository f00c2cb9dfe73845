package geo

import (
	"context"
	"math"
	"time"

	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

// Coordinate is a resolved place.
type Coordinate struct {
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	FormattedAddress string  `json:"formatted_address"`
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return apperrors.Wrap("geocode_error", "longitude out of range", nil)
	}
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return apperrors.Wrap("geocode_error", "latitude out of range", nil)
	}
	return nil
}

// Provider is an upstream geocoding API.
type Provider interface {
	Geocode(ctx context.Context, place string) (Coordinate, error)
}

// Store is a TTL cache of resolved places.
type Store interface {
	Get(ctx context.Context, key string) (Coordinate, bool, error)
	Save(ctx context.Context, key string, coord Coordinate, ttl time.Duration) error
}

// Repository keeps resolved places durably, keyed by the normalized place.
type Repository interface {
	Find(ctx context.Context, key string) (Coordinate, bool, error)
	Upsert(ctx context.Context, key string, coord Coordinate) error
}

// Config wires runtime settings for the geo domain.
type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
	Counters *metrics.LookupCounters
}
