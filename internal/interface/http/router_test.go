package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

func TestRouter_Health(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{})

	rec := performRequest(srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","geocode":{"storeHits":0,"repositoryHits":0,"upstreamCalls":0,"failures":0}}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRouter_RequestIDIsEchoed(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{})

	rec := performRequest(srv, http.MethodGet, "/healthz", "", map[string]string{requestIDHeader: "abc-123"})
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRouter_GeocodeSuccess(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{
		geo: &stubGeo{geocodeFn: func(ctx context.Context, place string) (geo.Coordinate, error) {
			require.Equal(t, "合肥", place)
			return geo.Coordinate{Longitude: 117.27, Latitude: 31.86, FormattedAddress: "安徽省合肥市"}, nil
		}},
	})

	rec := performRequest(srv, http.MethodPost, "/api/v1/geocode", `{"location":"合肥"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"location":"合肥","longitude":117.27,"latitude":31.86,"formatted_address":"安徽省合肥市"}`, rec.Body.String())
}

func TestRouter_GeocodeErrors(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{
		geo: &stubGeo{geocodeFn: func(ctx context.Context, place string) (geo.Coordinate, error) {
			return geo.Coordinate{}, apperrors.Wrap("geocode_error", "geocode api error: INVALID_USER_KEY", nil)
		}},
	})

	rec := performRequest(srv, http.MethodPost, "/api/v1/geocode", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(srv, http.MethodPost, "/api/v1/geocode", `{"location":"x"}`, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "geocode_error", body["error"]["code"])
	require.Contains(t, body["error"]["message"], "INVALID_USER_KEY")
	require.NotEmpty(t, body["error"]["requestId"])
}

func TestRouter_SolarTime(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{})

	rec := performRequest(srv, http.MethodPost, "/api/v1/solar-time", `{"beijingTime":"2024-06-01 12:00:00","longitude":116.4}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "2024-06-01 11:47:39", got["apparent_solar_time"])

	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", `{"beijingTime":"2024-06-01 12:00:00"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", `{"beijingTime":"yesterday","longitude":116.4}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_Astrolabe(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{
		astro: &stubAstrolabe{generateFn: func(ctx context.Context, req astrolabe.Request) (astrolabe.Response, error) {
			require.Equal(t, "2000-08-16", req.Birthday)
			require.EqualValues(t, 0, req.BirthTime)
			require.Equal(t, "女", req.Gender)
			return astrolabe.Response{Astrolabe: json.RawMessage(`{"palaces":[]}`)}, nil
		}},
	})

	rec := performRequest(srv, http.MethodPost, "/api/v1/astrolabe", `{"birthday":"2000-08-16","birthTime":0,"gender":"女"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got astrolabe.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.JSONEq(t, `{"palaces":[]}`, string(got.Astrolabe))

	rec = performRequest(srv, http.MethodPost, "/api/v1/astrolabe", `{"birthday":"2000-08-16","gender":"女"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AstrolabeChartFailure(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{
		astro: &stubAstrolabe{generateFn: func(ctx context.Context, req astrolabe.Request) (astrolabe.Response, error) {
			return astrolabe.Response{}, apperrors.Wrap("chart_error", "chart request failed", nil)
		}},
	})

	rec := performRequest(srv, http.MethodPost, "/api/v1/astrolabe", `{"birthday":"2000-08-16","birthTime":3,"gender":"男"}`, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "chart_error", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_AuthRequired(t *testing.T) {
	authSvc := auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour}, newTestLogger())
	srv := newRouterUnderTest(t, routerDeps{auth: authSvc, authEnabled: true})

	rec := performRequest(srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := `{"beijingTime":"2024-06-01 12:00:00","longitude":116.4}`
	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", body, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", body, map[string]string{"Authorization": "Bearer nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	issued, err := authSvc.Issue(context.Background(), "ops", 0)
	require.NoError(t, err)
	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", body, map[string]string{"Authorization": "Bearer " + issued.Token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(srv, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{rateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}})

	body := `{"beijingTime":"2024-06-01 12:00:00","longitude":116.4}`
	rec := performRequest(srv, http.MethodPost, "/api/v1/solar-time", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(srv, http.MethodPost, "/api/v1/solar-time", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_MCPInitialize(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{})

	rec := performRequest(srv, http.MethodPost, "/mcp",
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
		map[string]string{"Accept": "application/json, text/event-stream"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ziwei_iztro-mcpserver")
}

func TestCORSPreflight(t *testing.T) {
	srv := newRouterUnderTest(t, routerDeps{origins: []string{"https://chat.example.com"}})

	rec := performRequest(srv, http.MethodOptions, "/mcp", "", map[string]string{"Origin": "https://chat.example.com"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://chat.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id")
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	ok, _ := limiter.allow("a")
	require.True(t, ok)
	ok, _ = limiter.allow("a")
	require.True(t, ok)
	ok, wait := limiter.allow("a")
	require.False(t, ok)
	require.InDelta(t, float64(time.Second), float64(wait), float64(time.Millisecond))

	ok, _ = limiter.allow("b")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, _ = limiter.allow("a")
	require.True(t, ok)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", token)

	token, ok = bearerToken("bearer   xyz ")
	require.True(t, ok)
	require.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Bearer  ", "Basic abc"} {
		_, ok := bearerToken(header)
		require.False(t, ok, header)
	}
}

type routerDeps struct {
	geo         geo.Service
	astro       astrolabe.Service
	auth        auth.Service
	authEnabled bool
	rateLimit   config.RateLimitConfig
	origins     []string
}

func newRouterUnderTest(t *testing.T, deps routerDeps) *http.Server {
	t.Helper()
	if deps.geo == nil {
		deps.geo = &stubGeo{}
	}
	if deps.astro == nil {
		deps.astro = &stubAstrolabe{}
	}
	if deps.auth == nil {
		deps.auth = auth.NewService(auth.Config{Secret: "unused", TokenTTL: time.Hour}, newTestLogger())
	}
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: deps.origins,
			RateLimit:      deps.rateLimit,
			Auth:           config.AuthConfig{Enabled: deps.authEnabled},
		},
	}
	handler := NewHandler(deps.geo, deps.astro, metrics.NewLookupCounters(), newTestLogger())
	mcpHTTP := server.NewStreamableHTTPServer(server.NewMCPServer("ziwei_iztro-mcpserver", "test"))
	return NewRouter(cfg, handler, deps.auth, mcpHTTP)
}

func performRequest(srv *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubGeo struct {
	geocodeFn func(ctx context.Context, place string) (geo.Coordinate, error)
}

func (s *stubGeo) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	if s.geocodeFn != nil {
		return s.geocodeFn(ctx, place)
	}
	return geo.Coordinate{}, nil
}

type stubAstrolabe struct {
	generateFn func(ctx context.Context, req astrolabe.Request) (astrolabe.Response, error)
}

func (s *stubAstrolabe) Generate(ctx context.Context, req astrolabe.Request) (astrolabe.Response, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, req)
	}
	return astrolabe.Response{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
