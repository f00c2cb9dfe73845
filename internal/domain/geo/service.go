package geo

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

// Service resolves place names to coordinates.
type Service interface {
	Geocode(ctx context.Context, place string) (Coordinate, error)
}

type service struct {
	cfg      Config
	provider Provider
	store    Store
	repo     Repository
	logger   *slog.Logger
}

// NewService wires up the geo domain. Lookups try the store, then the
// repository, then a single upstream request. Config.Timeout bounds all
// three tiers together.
func NewService(cfg Config, provider Provider, store Store, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		provider: provider,
		store:    store,
		repo:     repo,
		logger:   logger.With("component", "geo.service"),
	}
}

func (s *service) Geocode(ctx context.Context, raw string) (Coordinate, error) {
	place := normalizePlace(raw)
	if place == "" {
		return Coordinate{}, apperrors.Wrap("invalid_input", "location cannot be empty", nil)
	}
	key := cacheKey(place)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if coord, ok := s.fromStore(ctx, key); ok {
		s.cfg.Counters.StoreHit()
		return coord, nil
	}
	if coord, ok := s.fromRepository(ctx, key); ok {
		s.cfg.Counters.RepositoryHit()
		s.saveStore(ctx, key, coord)
		return coord, nil
	}

	if err := ctx.Err(); err != nil {
		s.cfg.Counters.Failure()
		return Coordinate{}, apperrors.Wrap("geocode_error", "geocoding timed out", err)
	}

	s.cfg.Counters.UpstreamCall()
	coord, err := s.provider.Geocode(ctx, place)
	if err != nil {
		s.cfg.Counters.Failure()
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap("geocode_error", "geocoding request failed", err)
		}
		return Coordinate{}, err
	}
	if err := coord.Validate(); err != nil {
		s.cfg.Counters.Failure()
		return Coordinate{}, err
	}
	s.logger.Info("place geocoded", "place", place, "longitude", coord.Longitude, "latitude", coord.Latitude)

	s.saveStore(ctx, key, coord)
	if err := s.repo.Upsert(ctx, key, coord); err != nil {
		s.logger.Warn("place repository write failed", "place", place, "error", err)
	}
	return coord, nil
}

func (s *service) fromStore(ctx context.Context, key string) (Coordinate, bool) {
	coord, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("place cache read failed", "key", key, "error", err)
		return Coordinate{}, false
	}
	return coord, ok
}

func (s *service) fromRepository(ctx context.Context, key string) (Coordinate, bool) {
	coord, ok, err := s.repo.Find(ctx, key)
	if err != nil {
		s.logger.Warn("place repository read failed", "key", key, "error", err)
		return Coordinate{}, false
	}
	return coord, ok
}

func (s *service) saveStore(ctx context.Context, key string, coord Coordinate) {
	if err := s.store.Save(ctx, key, coord, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("place cache write failed", "key", key, "error", err)
	}
}

func normalizePlace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func cacheKey(place string) string {
	return strings.ToLower(place)
}
