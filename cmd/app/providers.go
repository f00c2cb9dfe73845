package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark3labs/mcp-go/server"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/infra/chart/iztro"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
	"github.com/yanqian/iztro-mcp/internal/infra/geo/amap"
	"github.com/yanqian/iztro-mcp/internal/infra/placerepo"
	"github.com/yanqian/iztro-mcp/internal/infra/placestore"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

func provideGeoConfig(cfg *config.Config, counters *metrics.LookupCounters) geo.Config {
	return geo.Config{
		CacheTTL: cfg.Geocode.CacheTTL,
		Timeout:  cfg.Geocode.Timeout,
		Counters: counters,
	}
}

func provideAMapClient(cfg *config.Config) *amap.Client {
	return amap.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.APIKey, cfg.Geocode.Timeout)
}

func provideBirthGeocoder(svc geo.Service) birthtime.Geocoder {
	return svc
}

func provideAdjuster(svc birthtime.Service) astrolabe.Adjuster {
	return svc
}

func provideAstrolabeConfig(cfg *config.Config) astrolabe.Config {
	return astrolabe.Config{
		DefaultLanguage: cfg.Chart.DefaultLanguage,
	}
}

func provideChartClient(cfg *config.Config) *iztro.Client {
	return iztro.NewClient(cfg.Chart.BaseURL, cfg.Chart.Timeout)
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}
}

func provideMCPHTTPServer(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}

func providePlaceRepository(cfg *config.Config, logger *slog.Logger) geo.Repository {
	fallback := placerepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Geocode.Postgres.DSN)
	if dsn == "" {
		logger.Info("geocode postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Geocode.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Geocode.Postgres.MaxConns
	}
	if cfg.Geocode.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Geocode.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := placerepo.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("places migration failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("geocode postgres repository enabled")
	return repo
}

func providePlaceStore(cfg *config.Config, logger *slog.Logger) geo.Store {
	if cfg.Geocode.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg.Geocode.Redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return placestore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return placestore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("geocode valkey store enabled", "addr", cfg.Geocode.Redis.Addr)
			return placestore.NewValkeyStore(client, "geocode")
		}
	}
	return placestore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
