package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

// App encapsulates the MCP server lifecycle over either transport.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	mcp        *server.MCPServer
	httpServer *http.Server
	stdin      io.Reader
	stdout     io.Writer
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, mcpServer *server.MCPServer, httpServer *http.Server) *App {
	return &App{
		cfg:        cfg,
		logger:     logger.With("component", "bootstrap"),
		mcp:        mcpServer,
		httpServer: httpServer,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
}

// Run serves the configured transport and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	switch a.cfg.Server.Transport {
	case config.TransportStdio:
		return a.runStdio(ctx)
	case config.TransportHTTP:
		return a.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", a.cfg.Server.Transport)
	}
}

func (a *App) runStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(a.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(a.logger.Handler(), slog.LevelError))

	a.logger.Info("mcp stdio server starting", "name", a.cfg.Server.Name, "version", a.cfg.Server.Version)
	err := stdio.Listen(ctx, a.stdin, a.stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("mcp stdio server stopped")
	return nil
}

func (a *App) runHTTP(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.httpServer.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
