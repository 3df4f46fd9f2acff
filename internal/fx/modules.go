package fx

import (
	"lp-tracker/internal/api"
	"lp-tracker/internal/config"
	"lp-tracker/internal/logger"
	"lp-tracker/internal/ranking"
	"lp-tracker/internal/server"
	"lp-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideRankingConfig(cfg *config.Config) (ranking.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return ranking.Config{}, err
	}
	return ranking.NewConfig(cfg.ApexBase, loc), nil
}

func ProvidePageSource(client *api.MobalyticsClient) service.PageSource {
	return client
}

func ProvideCutoffSource(client *api.DeeplolClient, cfg *config.Config, logger zerolog.Logger) service.CutoffSource {
	return api.NewCachedCutoffSource(client, cfg.CutoffCacheTTL, logger)
}

func ProvideHistoryProvider(svc *service.LPService) server.HistoryProvider {
	return svc
}

// Core builds everything needed to fetch and render an LP history.
var Core = fx.Options(
	config.Module,
	logger.Module,
	fx.Provide(ProvideRankingConfig),
	// api clients
	fx.Provide(api.NewMobalyticsClient),
	fx.Provide(api.NewDeeplolClient),
	fx.Provide(ProvidePageSource),
	fx.Provide(ProvideCutoffSource),
	// svc
	fx.Provide(service.NewHistoryService),
	fx.Provide(service.NewThresholdService),
	fx.Provide(service.NewLPService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(ProvideHistoryProvider),
	fx.Provide(server.NewHistoryServer),
)
