package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
	"github.com/yanqian/iztro-mcp/pkg/logger"
)

// issuetoken mints a bearer token for the HTTP transport using http.auth.secret.
func main() {
	subject := flag.String("subject", "", "token subject, e.g. the client name")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to http.auth.tokenTtl)")
	flag.Parse()

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// logs to stderr, stdout carries the token
	cfg.Server.Transport = config.TransportStdio

	svc := auth.NewService(auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}, logger.New(cfg))

	issued, err := svc.Issue(context.Background(), *subject, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		auth.IssuedToken
		TTL string `json:"ttl"`
	}{issued, time.Until(issued.ExpiresAt).Round(time.Second).String()}); err != nil {
		log.Fatalf("encode token: %v", err)
	}
}
