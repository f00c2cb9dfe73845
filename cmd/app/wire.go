//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/iztro-mcp/internal/bootstrap"
	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/auth"
	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/infra/chart/iztro"
	"github.com/yanqian/iztro-mcp/internal/infra/config"
	"github.com/yanqian/iztro-mcp/internal/infra/geo/amap"
	httpiface "github.com/yanqian/iztro-mcp/internal/interface/http"
	"github.com/yanqian/iztro-mcp/internal/interface/mcpserver"
	"github.com/yanqian/iztro-mcp/pkg/logger"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

func initializeApp(overrides config.Overrides) (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewLookupCounters,
		provideGeoConfig,
		provideAMapClient,
		providePlaceStore,
		providePlaceRepository,
		provideBirthGeocoder,
		provideAdjuster,
		provideAstrolabeConfig,
		provideChartClient,
		provideAuthConfig,
		provideMCPHTTPServer,
		geo.NewService,
		birthtime.NewService,
		astrolabe.NewService,
		auth.NewService,
		wire.Bind(new(geo.Provider), new(*amap.Client)),
		wire.Bind(new(astrolabe.ChartClient), new(*iztro.Client)),
		mcpserver.NewHandler,
		mcpserver.NewServer,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
