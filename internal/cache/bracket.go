package cache

import (
	"sync"
	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type bracketLoader interface {
	PlayerBrackets(playerID uuid.UUID, done func([]domain.BracketRecord, error))
}

// BracketCache mirrors TitleCache for owned bracket ids.
type BracketCache struct {
	loader bracketLoader
	logger zerolog.Logger

	mu      sync.RWMutex
	players map[uuid.UUID]map[string]struct{}
	loading map[uuid.UUID]struct{}
}

func NewBracketCache(loader bracketLoader, logger zerolog.Logger) *BracketCache {
	return &BracketCache{
		loader:  loader,
		logger:  logger,
		players: make(map[uuid.UUID]map[string]struct{}),
		loading: make(map[uuid.UUID]struct{}),
	}
}

func (c *BracketCache) Load(playerID uuid.UUID) {
	c.triggerLoad(playerID)
}

func (c *BracketCache) UnloadPlayer(playerID uuid.UUID) {
	c.mu.Lock()
	delete(c.players, playerID)
	delete(c.loading, playerID)
	c.mu.Unlock()
}

func (c *BracketCache) IsLoaded(playerID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.players[playerID]
	return ok
}

func (c *BracketCache) PlayerBrackets(playerID uuid.UUID) []string {
	c.mu.RLock()
	owned, loaded := c.players[playerID]
	var out []string
	for id := range owned {
		out = append(out, id)
	}
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return out
}

func (c *BracketCache) HasBracket(playerID uuid.UUID, bracketID string) bool {
	c.mu.RLock()
	owned, loaded := c.players[playerID]
	_, ok := owned[bracketID]
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return ok
}

func (c *BracketCache) AddBracket(playerID uuid.UUID, bracketID string) {
	c.mu.Lock()
	if owned, ok := c.players[playerID]; ok {
		owned[bracketID] = struct{}{}
	}
	c.mu.Unlock()
}

func (c *BracketCache) RemoveBracket(playerID uuid.UUID, bracketID string) {
	c.mu.Lock()
	if owned, ok := c.players[playerID]; ok {
		delete(owned, bracketID)
	}
	c.mu.Unlock()
}

func (c *BracketCache) triggerLoad(playerID uuid.UUID) {
	c.mu.Lock()
	if _, loaded := c.players[playerID]; loaded {
		c.mu.Unlock()
		return
	}
	if _, inFlight := c.loading[playerID]; inFlight {
		c.mu.Unlock()
		return
	}
	c.loading[playerID] = struct{}{}
	c.mu.Unlock()

	c.loader.PlayerBrackets(playerID, func(records []domain.BracketRecord, err error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.loading, playerID)
		if err != nil {
			c.logger.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to load player brackets")
			return
		}
		owned := make(map[string]struct{}, len(records))
		for _, rec := range records {
			owned[rec.BracketID] = struct{}{}
		}
		c.players[playerID] = owned
	})
}
