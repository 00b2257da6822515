package service

import (
	"encoding/json"
	"os"
	"sync"

	"title-service/internal/cache"
	"title-service/internal/config"
	"title-service/internal/domain"
	"title-service/internal/presence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BracketStore is the slice of the bracket repository the service writes
// through.
type BracketStore interface {
	AddPlayerBracket(playerID uuid.UUID, bracketID string, done func(error))
	RemovePlayerBracket(playerID uuid.UUID, bracketID string, done func(bool, error))
}

// BracketService owns the preset bracket catalog and bracket ownership.
// Default brackets belong to every player without a purchase row.
type BracketService struct {
	cfg      *config.Config
	store    BracketStore
	cache    *cache.BracketCache
	titles   *TitleService
	payments *PurchaseCoordinator
	presence presence.Presence
	logger   zerolog.Logger

	mu      sync.RWMutex
	catalog map[string]domain.BracketData
}

func NewBracketService(
	cfg *config.Config,
	store BracketStore,
	bracketCache *cache.BracketCache,
	titles *TitleService,
	payments *PurchaseCoordinator,
	pres presence.Presence,
	logger zerolog.Logger,
) *BracketService {
	return &BracketService{
		cfg:      cfg,
		store:    store,
		cache:    bracketCache,
		titles:   titles,
		payments: payments,
		presence: pres,
		logger:   logger,
		catalog:  make(map[string]domain.BracketData),
	}
}

// LoadCatalog reads the bracket catalog file. A missing file leaves the
// catalog empty, which only disables bracket purchases.
func (s *BracketService) LoadCatalog() error {
	raw, err := os.ReadFile(s.cfg.BracketsPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("path", s.cfg.BracketsPath).Msg("bracket catalog file not found")
			return nil
		}
		return err
	}

	var brackets []domain.BracketData
	if err := json.Unmarshal(raw, &brackets); err != nil {
		return err
	}

	catalog := make(map[string]domain.BracketData, len(brackets))
	for _, b := range brackets {
		if b.ID == "" {
			continue
		}
		if b.Left == "" {
			b.Left = "["
		}
		if b.Right == "" {
			b.Right = "]"
		}
		catalog[b.ID] = b
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	s.logger.Info().Int("count", len(catalog)).Msg("bracket catalog loaded")
	return nil
}

func (s *BracketService) PresetBracket(bracketID string) (domain.BracketData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.catalog[bracketID]
	return b, ok
}

func (s *BracketService) PresetBrackets() map[string]domain.BracketData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.BracketData, len(s.catalog))
	for id, b := range s.catalog {
		out[id] = b
	}
	return out
}

func (s *BracketService) DefaultBrackets() []domain.BracketData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var defaults []domain.BracketData
	for _, b := range s.catalog {
		if b.Default {
			defaults = append(defaults, b)
		}
	}
	return defaults
}

// HasBracket reports ownership, counting default brackets as always owned.
func (s *BracketService) HasBracket(playerID uuid.UUID, bracketID string) bool {
	b, ok := s.PresetBracket(bracketID)
	if !ok {
		return false
	}
	if b.Default {
		return true
	}
	return s.cache.HasBracket(playerID, bracketID)
}

// PlayerBrackets lists every bracket the player can use.
func (s *BracketService) PlayerBrackets(playerID uuid.UUID) []domain.BracketData {
	owned := make(map[string]struct{})
	for _, id := range s.cache.PlayerBrackets(playerID) {
		owned[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BracketData
	for id, b := range s.catalog {
		if b.Default {
			out = append(out, b)
			continue
		}
		if _, ok := owned[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (s *BracketService) OnPlayerJoin(playerID uuid.UUID) {
	s.cache.Load(playerID)
}

func (s *BracketService) OnPlayerQuit(playerID uuid.UUID) {
	s.cache.UnloadPlayer(playerID)
}

// PurchaseBracket mirrors the preset-title purchase pipeline for brackets.
func (s *BracketService) PurchaseBracket(playerID uuid.UUID, bracketID string, done func(domain.PurchaseResult)) {
	b, ok := s.PresetBracket(bracketID)
	if !ok {
		done(domain.ResultNotFound)
		return
	}
	if s.HasBracket(playerID, bracketID) {
		done(domain.ResultAlreadyOwned)
		return
	}
	if b.RequiresPermission() && !s.presence.HasPermission(playerID, b.Permission) {
		done(domain.ResultPermissionDenied)
		return
	}
	if result := s.payments.CheckRails(playerID, b.PriceMoney, b.PricePoints); !result.OK() {
		done(result)
		return
	}

	s.payments.Execute(playerID, b.PriceMoney, b.PricePoints, func(result domain.PurchaseResult) {
		if !result.OK() {
			done(result)
			return
		}
		s.store.AddPlayerBracket(playerID, bracketID, func(err error) {
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("player_id", playerID.String()).
					Str("bracket_id", bracketID).
					Msg("persistence failed after successful payment")
				done(domain.ResultDatabaseError)
				return
			}
			s.cache.AddBracket(playerID, bracketID)
			done(domain.ResultSuccess)
		})
	})
}

// GiveBracket grants a bracket without payment (admin path).
func (s *BracketService) GiveBracket(playerID uuid.UUID, bracketID string, done func(bool)) {
	s.store.AddPlayerBracket(playerID, bracketID, func(err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", playerID.String()).Str("bracket_id", bracketID).Msg("failed to give bracket")
			done(false)
			return
		}
		s.cache.AddBracket(playerID, bracketID)
		done(true)
	})
}

// SelectBracket rewrites the player's current title with an owned bracket
// pair. Fails when the bracket is not owned or no title is active.
func (s *BracketService) SelectBracket(playerID uuid.UUID, bracketID string, done func(bool)) {
	b, ok := s.PresetBracket(bracketID)
	if !ok || !s.HasBracket(playerID, bracketID) {
		done(false)
		return
	}

	titleID, ok := s.titles.CurrentTitleID(playerID)
	if !ok {
		done(false)
		return
	}
	data, ok := s.titles.CurrentTitle(playerID)
	if !ok {
		done(false)
		return
	}

	data.BracketLeft = b.Left
	data.BracketRight = b.Right
	s.titles.UpdateTitleData(playerID, titleID, data, done)
}
