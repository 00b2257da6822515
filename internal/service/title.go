package service

import (
	"title-service/internal/cache"
	"title-service/internal/config"
	"title-service/internal/domain"
	"title-service/internal/presence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TitleStore is the slice of the title repository the service writes through.
type TitleStore interface {
	AddOrUpdateTitle(playerID uuid.UUID, titleID string, data domain.TitleData, done func(error))
	SetCurrentTitle(playerID uuid.UUID, titleID string, done func(bool, error))
	ClearCurrentTitle(playerID uuid.UUID, done func(error))
	RemovePlayerTitle(playerID uuid.UUID, titleID string, done func(bool, error))
	TitleExists(playerID uuid.UUID, titleID string, done func(bool, error))
}

// PresetSource resolves purchasable preset title definitions.
type PresetSource interface {
	Preset(titleID string) (domain.TitleData, bool)
	Presets() map[string]domain.TitleData
}

// TitleService is the entry point for everything touching player titles:
// purchases, grants, the current-title pointer, and custom title creation.
// All completion is via callback; nothing here blocks its caller.
type TitleService struct {
	cfg      *config.Config
	store    TitleStore
	cache    *cache.TitleCache
	presets  PresetSource
	payments *PurchaseCoordinator
	presence presence.Presence
	logger   zerolog.Logger
}

func NewTitleService(
	cfg *config.Config,
	store TitleStore,
	titleCache *cache.TitleCache,
	presets PresetSource,
	payments *PurchaseCoordinator,
	pres presence.Presence,
	logger zerolog.Logger,
) *TitleService {
	return &TitleService{
		cfg:      cfg,
		store:    store,
		cache:    titleCache,
		presets:  presets,
		payments: payments,
		presence: pres,
		logger:   logger,
	}
}

// OnPlayerJoin warms the cache for a connecting player.
func (s *TitleService) OnPlayerJoin(playerID uuid.UUID) {
	s.cache.Load(playerID)
}

// OnPlayerQuit drops the player's cached state.
func (s *TitleService) OnPlayerQuit(playerID uuid.UUID) {
	s.cache.UnloadPlayer(playerID)
}

func (s *TitleService) PlayerTitles(playerID uuid.UUID) map[string]domain.TitleData {
	return s.cache.PlayerTitles(playerID)
}

func (s *TitleService) CurrentTitle(playerID uuid.UUID) (domain.TitleData, bool) {
	return s.cache.CurrentTitle(playerID)
}

func (s *TitleService) CurrentTitleID(playerID uuid.UUID) (string, bool) {
	return s.cache.CurrentTitleID(playerID)
}

func (s *TitleService) HasTitle(playerID uuid.UUID, titleID string) bool {
	return s.cache.HasTitle(playerID, titleID)
}

func (s *TitleService) TitleCount(playerID uuid.UUID) int {
	return s.cache.TitleCount(playerID)
}

func (s *TitleService) RefreshCache(playerID uuid.UUID) {
	s.cache.Refresh(playerID)
}

// PurchasePreset runs the full purchase pipeline for a preset title:
// resolve, ownership, permission, rail availability and balance, sequential
// debits with compensation, then persistence and cache update.
func (s *TitleService) PurchasePreset(playerID uuid.UUID, titleID string, done func(domain.PurchaseResult)) {
	data, ok := s.presets.Preset(titleID)
	if !ok {
		done(domain.ResultNotFound)
		return
	}
	if s.cache.HasTitle(playerID, titleID) {
		done(domain.ResultAlreadyOwned)
		return
	}
	if data.RequiresPermission() && !s.presence.HasPermission(playerID, data.Permission) {
		done(domain.ResultPermissionDenied)
		return
	}
	if result := s.payments.CheckRails(playerID, data.PriceMoney, data.PricePoints); !result.OK() {
		done(result)
		return
	}

	s.payments.Execute(playerID, data.PriceMoney, data.PricePoints, func(result domain.PurchaseResult) {
		if !result.OK() {
			done(result)
			return
		}
		s.grantTitle(playerID, titleID, data, done)
	})
}

// grantTitle persists ownership after payment and reflects it in the cache on
// repository success. A persistence failure here is reported as
// ResultDatabaseError without refunding the completed payment; the gap is
// logged loudly instead of auto-retried.
func (s *TitleService) grantTitle(playerID uuid.UUID, titleID string, data domain.TitleData, done func(domain.PurchaseResult)) {
	s.store.AddOrUpdateTitle(playerID, titleID, data, func(err error) {
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("player_id", playerID.String()).
				Str("title_id", titleID).
				Msg("persistence failed after successful payment")
			done(domain.ResultDatabaseError)
			return
		}
		s.cache.AddTitle(playerID, titleID, data)
		s.logger.Info().
			Str("player_id", playerID.String()).
			Str("title_id", titleID).
			Msg("title granted")
		done(domain.ResultSuccess)
	})
}

// SetCurrentTitle swaps the active title. The cached pointer moves only after
// the repository's transactional swap commits.
func (s *TitleService) SetCurrentTitle(playerID uuid.UUID, titleID string, done func(bool)) {
	if !s.cache.HasTitle(playerID, titleID) {
		done(false)
		return
	}
	s.store.SetCurrentTitle(playerID, titleID, func(ok bool, err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Str("title_id", titleID).Msg("failed to set current title")
		}
		if ok && err == nil {
			s.cache.SetCurrent(playerID, titleID)
		}
		done(ok && err == nil)
	})
}

func (s *TitleService) ClearCurrentTitle(playerID uuid.UUID, done func(bool)) {
	s.store.ClearCurrentTitle(playerID, func(err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to clear current title")
			done(false)
			return
		}
		s.cache.ClearCurrent(playerID)
		done(true)
	})
}

// GiveTitle grants a title without payment (admin path).
func (s *TitleService) GiveTitle(playerID uuid.UUID, titleID string, data domain.TitleData, done func(bool)) {
	s.store.AddOrUpdateTitle(playerID, titleID, data, func(err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Str("title_id", titleID).Msg("failed to give title")
			done(false)
			return
		}
		s.cache.AddTitle(playerID, titleID, data)
		done(true)
	})
}

func (s *TitleService) RemoveTitle(playerID uuid.UUID, titleID string, done func(bool)) {
	s.store.RemovePlayerTitle(playerID, titleID, func(removed bool, err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Str("title_id", titleID).Msg("failed to remove title")
			done(false)
			return
		}
		if removed {
			s.cache.RemoveTitle(playerID, titleID)
		}
		done(removed)
	})
}

// UpdateTitleData rewrites an owned title's snapshot (bracket edits); the
// upsert leaves on_use and obtained_at untouched.
func (s *TitleService) UpdateTitleData(playerID uuid.UUID, titleID string, data domain.TitleData, done func(bool)) {
	s.store.AddOrUpdateTitle(playerID, titleID, data, func(err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Str("title_id", titleID).Msg("failed to update title data")
			done(false)
			return
		}
		s.cache.AddTitle(playerID, titleID, data)
		done(true)
	})
}

func (s *TitleService) Presets() map[string]domain.TitleData {
	return s.presets.Presets()
}

func (s *TitleService) Preset(titleID string) (domain.TitleData, bool) {
	return s.presets.Preset(titleID)
}
