package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

// New constructs a JSON slog logger. The stdio transport owns stdout, so logs
// move to stderr whenever it is active.
func New(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Server.Transport == config.TransportStdio {
		out = os.Stderr
	}
	return newLogger(out, os.Getenv("LOG_LEVEL"))
}

func newLogger(out io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler).With("service", "iztro-mcp")
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
