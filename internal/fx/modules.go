package fx

import (
	"title-service/internal/cache"
	"title-service/internal/config"
	"title-service/internal/database"
	"title-service/internal/economy"
	"title-service/internal/logger"
	"title-service/internal/presence"
	"title-service/internal/repository"
	"title-service/internal/rotation"
	"title-service/internal/scheduler"
	"title-service/internal/server"
	"title-service/internal/service"
	"title-service/internal/session"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func provideTitleCache(repo *repository.TitleRepository, log zerolog.Logger) *cache.TitleCache {
	return cache.NewTitleCache(repo, log)
}

func provideBracketCache(repo *repository.BracketRepository, log zerolog.Logger) *cache.BracketCache {
	return cache.NewBracketCache(repo, log)
}

func provideTitleStore(repo *repository.TitleRepository) service.TitleStore {
	return repo
}

func provideBracketStore(repo *repository.BracketRepository) service.BracketStore {
	return repo
}

func providePresetSource(presets *service.PresetService) service.PresetSource {
	return presets
}

func providePresence(roster *presence.Roster) presence.Presence {
	return roster
}

func provideEconomy(wallet *economy.CurrencyWallet) economy.Provider {
	return wallet
}

func providePoints(wallet *economy.PointsWallet) economy.PointsProvider {
	return wallet
}

func provideSessionManager(cfg *config.Config, titles *service.TitleService, pres presence.Presence, log zerolog.Logger) *session.Manager {
	return session.NewManager(cfg, titles, pres, log)
}

func provideRotationManager(titles *service.TitleService, pres presence.Presence, tracker *rotation.Tracker, log zerolog.Logger) *rotation.Manager {
	return rotation.NewManager(titles, pres, tracker, log)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(database.NewQueue),
	// repos
	fx.Provide(repository.NewTitleRepository),
	fx.Provide(repository.NewPresetRepository),
	fx.Provide(repository.NewBracketRepository),
	// caches
	fx.Provide(provideTitleCache),
	fx.Provide(provideBracketCache),
	// wallets
	fx.Provide(economy.NewCurrencyWallet),
	fx.Provide(economy.NewPointsWallet),
	fx.Provide(provideEconomy),
	fx.Provide(providePoints),
	// presence
	fx.Provide(presence.NewRoster),
	fx.Provide(providePresence),
	// svc
	fx.Provide(provideTitleStore),
	fx.Provide(provideBracketStore),
	fx.Provide(providePresetSource),
	fx.Provide(service.NewPurchaseCoordinator),
	fx.Provide(service.NewPresetService),
	fx.Provide(service.NewTitleService),
	fx.Provide(service.NewBracketService),
	// flows
	fx.Provide(provideSessionManager),
	fx.Provide(rotation.NewTracker),
	fx.Provide(provideRotationManager),
	fx.Provide(scheduler.New),
	// server
	fx.Provide(server.NewTitleServer),
)
