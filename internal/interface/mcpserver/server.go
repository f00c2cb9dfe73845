package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

// NewServer builds the MCP server and registers every tool on it.
func NewServer(cfg *config.Config, handler *Handler) *server.MCPServer {
	s := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(cfg.Server.Instructions),
		server.WithRecovery(),
	)
	handler.Register(s)
	return s
}
