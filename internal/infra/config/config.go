package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Geocode GeocodeConfig `yaml:"geocode"`
	Chart   ChartConfig   `yaml:"chart"`
}

// ServerConfig describes the MCP server identity and transport.
type ServerConfig struct {
	Transport    string `yaml:"transport"`
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Instructions string `yaml:"instructions"`
}

// HTTPConfig controls server level behavior when the http transport is used.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Auth           AuthConfig      `yaml:"auth"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig protects the REST and MCP-over-HTTP endpoints with bearer tokens.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// GeocodeConfig configures the AMap geocoding collaborator and its caches.
type GeocodeConfig struct {
	Provider string         `yaml:"provider"`
	APIKey   string         `yaml:"apiKey"`
	BaseURL  string         `yaml:"baseUrl"`
	Timeout  time.Duration  `yaml:"timeout"`
	CacheTTL time.Duration  `yaml:"cacheTtl"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ChartConfig points at the iztro chart engine.
type ChartConfig struct {
	BaseURL         string        `yaml:"baseUrl"`
	Timeout         time.Duration `yaml:"timeout"`
	DefaultLanguage string        `yaml:"defaultLanguage"`
}

// Overrides carries command-line settings that win over file and environment.
type Overrides struct {
	ConfigPath string
	Transport  string
}

// Load reads configuration from .env, a YAML file and environment variables,
// then applies the non-empty overrides.
func Load(overrides Overrides) (*Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	cfg := defaultConfig()

	path := overrides.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	if v := strings.TrimSpace(overrides.Transport); v != "" {
		cfg.Server.Transport = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_AUTH_ENABLED"); v != "" {
		cfg.HTTP.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_AUTH_SECRET"); v != "" {
		cfg.HTTP.Auth.Secret = v
	}
	if v := os.Getenv("HTTP_AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AMAP_API_KEY"); v != "" {
		cfg.Geocode.APIKey = v
	}
	if v := os.Getenv("GEOCODE_BASE_URL"); v != "" {
		cfg.Geocode.BaseURL = v
	}
	if v := os.Getenv("GEOCODE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocode.Timeout = parsed
		}
	}
	if v := os.Getenv("GEOCODE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocode.CacheTTL = parsed
		}
	}
	if v := os.Getenv("GEOCODE_REDIS_ENABLED"); v != "" {
		cfg.Geocode.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("GEOCODE_REDIS_ADDR"); v != "" {
		cfg.Geocode.Redis.Addr = v
	}
	if v := os.Getenv("GEOCODE_POSTGRES_DSN"); v != "" {
		cfg.Geocode.Postgres.DSN = v
	}
	if v := os.Getenv("GEOCODE_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Geocode.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CHART_BASE_URL"); v != "" {
		cfg.Chart.BaseURL = v
	}
	if v := os.Getenv("CHART_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Chart.Timeout = parsed
		}
	}
	if v := os.Getenv("CHART_DEFAULT_LANGUAGE"); v != "" {
		cfg.Chart.DefaultLanguage = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport:    TransportStdio,
			Name:         "ziwei_iztro-mcpserver",
			Version:      "1.0.0",
			Instructions: "Generates Zi Wei Dou Shu natal charts from birth data. Requires the birthday, birth time slot and gender; an optional birth place enables the apparent solar time correction.",
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Auth: AuthConfig{
				Enabled:  false,
				TokenTTL: 30 * 24 * time.Hour,
			},
		},
		Geocode: GeocodeConfig{
			Provider: "amap",
			BaseURL:  "https://restapi.amap.com",
			Timeout:  5 * time.Second,
			CacheTTL: 30 * 24 * time.Hour,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Chart: ChartConfig{
			BaseURL:         "http://localhost:3000",
			Timeout:         10 * time.Second,
			DefaultLanguage: "zh-CN",
		},
	}
}

// Validate ensures the configuration is safe to use. A missing AMap key is
// not an error here; geocoding reports it when first needed.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("server.transport must be %q or %q", TransportStdio, TransportHTTP)
	}
	if strings.TrimSpace(c.Server.Name) == "" {
		return errors.New("server.name cannot be empty")
	}
	if c.Server.Transport == TransportHTTP && c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Auth.Enabled && strings.TrimSpace(c.HTTP.Auth.Secret) == "" {
		return errors.New("http.auth.secret cannot be empty when auth is enabled")
	}
	if c.Geocode.Provider != "amap" {
		return fmt.Errorf("geocode.provider %q is not supported", c.Geocode.Provider)
	}
	if strings.TrimSpace(c.Geocode.BaseURL) == "" {
		return errors.New("geocode.baseUrl cannot be empty")
	}
	if c.Geocode.Timeout <= 0 {
		return errors.New("geocode.timeout must be positive")
	}
	if c.Geocode.CacheTTL < 0 {
		return errors.New("geocode.cacheTtl cannot be negative")
	}
	if c.Geocode.Redis.Enabled && strings.TrimSpace(c.Geocode.Redis.Addr) == "" {
		return errors.New("geocode.redis.addr cannot be empty when redis cache is enabled")
	}
	if strings.TrimSpace(c.Chart.BaseURL) == "" {
		return errors.New("chart.baseUrl cannot be empty")
	}
	if c.Chart.Timeout <= 0 {
		return errors.New("chart.timeout must be positive")
	}
	return nil
}
