//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/yanqian/iztro-mcp/internal/bootstrap"
	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
	"github.com/yanqian/iztro-mcp/internal/interface/http"
	"github.com/yanqian/iztro-mcp/internal/interface/mcpserver"
	"github.com/yanqian/iztro-mcp/pkg/logger"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

// Injectors from wire.go, written out by hand in wire's output layout.

func initializeApp(overrides config.Overrides) (*bootstrap.App, error) {
	configConfig, err := config.Load(overrides)
	if err != nil {
		return nil, err
	}
	slogLogger := logger.New(configConfig)
	lookupCounters := metrics.NewLookupCounters()
	geoConfig := provideGeoConfig(configConfig, lookupCounters)
	client := provideAMapClient(configConfig)
	store := providePlaceStore(configConfig, slogLogger)
	repository := providePlaceRepository(configConfig, slogLogger)
	service := geo.NewService(geoConfig, client, store, repository, slogLogger)
	astrolabeConfig := provideAstrolabeConfig(configConfig)
	geocoder := provideBirthGeocoder(service)
	birthtimeService := birthtime.NewService(geocoder, slogLogger)
	adjuster := provideAdjuster(birthtimeService)
	iztroClient := provideChartClient(configConfig)
	astrolabeService := astrolabe.NewService(astrolabeConfig, adjuster, iztroClient, slogLogger)
	handler := mcpserver.NewHandler(service, astrolabeService, slogLogger)
	mcpServer := mcpserver.NewServer(configConfig, handler)
	httpHandler := http.NewHandler(service, astrolabeService, lookupCounters, slogLogger)
	authConfig := provideAuthConfig(configConfig)
	authService := auth.NewService(authConfig, slogLogger)
	streamableHTTPServer := provideMCPHTTPServer(mcpServer)
	httpServer := http.NewRouter(configConfig, httpHandler, authService, streamableHTTPServer)
	app := bootstrap.NewApp(configConfig, slogLogger, mcpServer, httpServer)
	return app, nil
}
