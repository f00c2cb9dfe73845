package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// NewRouter wires up the REST handlers and the MCP endpoint and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, mcpHTTP *server.StreamableHTTPServer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	var protected []gin.HandlerFunc
	if cfg.HTTP.Auth.Enabled {
		protected = append(protected, authMiddleware(authSvc))
	}
	protected = append(protected, rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))

	api := router.Group("/api/v1", protected...)
	{
		api.POST("/geocode", handler.Geocode)
		api.POST("/solar-time", handler.SolarTime)
		api.POST("/astrolabe", handler.Astrolabe)
	}

	router.Group("/mcp", protected...).Any("", gin.WrapH(mcpHTTP))

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if claims, ok := getClaims(c); ok {
			attrs = append(attrs, "subject", claims.Subject)
		}
		logger.Info("http request", attrs...)
	}
}
