package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/yanqian/iztro-mcp/internal/infra/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (overrides CONFIG_PATH)")
	transport := flag.String("transport", "", "stdio or http (overrides MCP_TRANSPORT)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp(config.Overrides{ConfigPath: *configPath, Transport: *transport})
	if err != nil {
		log.Fatalf("failed to wire application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}
