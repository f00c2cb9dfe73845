package placerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
)

// Schema creates the table used by PostgresRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS places (
	place_key         TEXT PRIMARY KEY,
	longitude         DOUBLE PRECISION NOT NULL,
	latitude          DOUBLE PRECISION NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository implements geo.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate ensures the places table exists.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// Find fetches a place by its normalized key.
func (r *PostgresRepository) Find(ctx context.Context, key string) (geo.Coordinate, bool, error) {
	var coord geo.Coordinate
	err := r.pool.QueryRow(ctx, `
		SELECT longitude, latitude, formatted_address
		FROM places
		WHERE place_key = $1
	`, key).Scan(&coord.Longitude, &coord.Latitude, &coord.FormattedAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return geo.Coordinate{}, false, nil
	}
	if err != nil {
		return geo.Coordinate{}, false, err
	}
	return coord, true, nil
}

// Upsert stores or refreshes a place.
func (r *PostgresRepository) Upsert(ctx context.Context, key string, coord geo.Coordinate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO places (place_key, longitude, latitude, formatted_address, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (place_key) DO UPDATE
		SET longitude = EXCLUDED.longitude,
			latitude = EXCLUDED.latitude,
			formatted_address = EXCLUDED.formatted_address,
			updated_at = now()
	`, key, coord.Longitude, coord.Latitude, coord.FormattedAddress)
	return err
}

var _ geo.Repository = (*PostgresRepository)(nil)
