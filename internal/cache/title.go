package cache

import (
	"sync"
	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type titleLoader interface {
	PlayerTitles(playerID uuid.UUID, done func([]domain.PlayerTitleRecord, error))
}

// playerEntry is installed whole or not at all; a present entry always holds
// every owned title plus the current pointer.
type playerEntry struct {
	titles    map[string]domain.TitleData
	currentID string
}

// TitleCache is the read-through cache over the title repository. Reads on an
// unloaded player trigger exactly one background load, guarded by a
// loading-set, and return zero values immediately; mutating methods are only
// called from repository success callbacks, so the cache never runs ahead of
// committed state.
type TitleCache struct {
	loader titleLoader
	logger zerolog.Logger

	mu      sync.RWMutex
	players map[uuid.UUID]*playerEntry
	loading map[uuid.UUID]struct{}
}

func NewTitleCache(loader titleLoader, logger zerolog.Logger) *TitleCache {
	return &TitleCache{
		loader:  loader,
		logger:  logger,
		players: make(map[uuid.UUID]*playerEntry),
		loading: make(map[uuid.UUID]struct{}),
	}
}

// Load materializes a player's titles in the background (player join).
func (c *TitleCache) Load(playerID uuid.UUID) {
	c.triggerLoad(playerID)
}

// UnloadPlayer drops all cached state; the next access reloads from the
// repository (player disconnect).
func (c *TitleCache) UnloadPlayer(playerID uuid.UUID) {
	c.mu.Lock()
	delete(c.players, playerID)
	delete(c.loading, playerID)
	c.mu.Unlock()
}

func (c *TitleCache) Refresh(playerID uuid.UUID) {
	c.UnloadPlayer(playerID)
	c.triggerLoad(playerID)
}

func (c *TitleCache) IsLoaded(playerID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.players[playerID]
	return ok
}

// PlayerTitles returns a copy of the owned titles, or an empty map while the
// player is unloaded (triggering a load).
func (c *TitleCache) PlayerTitles(playerID uuid.UUID) map[string]domain.TitleData {
	c.mu.RLock()
	entry, ok := c.players[playerID]
	var out map[string]domain.TitleData
	if ok {
		out = make(map[string]domain.TitleData, len(entry.titles))
		for id, data := range entry.titles {
			out[id] = data
		}
	}
	c.mu.RUnlock()

	if !ok {
		c.triggerLoad(playerID)
		return map[string]domain.TitleData{}
	}
	return out
}

func (c *TitleCache) CurrentTitle(playerID uuid.UUID) (domain.TitleData, bool) {
	c.mu.RLock()
	entry, loaded := c.players[playerID]
	var (
		data domain.TitleData
		ok   bool
	)
	if loaded && entry.currentID != "" {
		data, ok = entry.titles[entry.currentID]
	}
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return data, ok
}

func (c *TitleCache) CurrentTitleID(playerID uuid.UUID) (string, bool) {
	c.mu.RLock()
	entry, loaded := c.players[playerID]
	var id string
	if loaded {
		id = entry.currentID
	}
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return id, id != ""
}

func (c *TitleCache) HasTitle(playerID uuid.UUID, titleID string) bool {
	c.mu.RLock()
	entry, loaded := c.players[playerID]
	var ok bool
	if loaded {
		_, ok = entry.titles[titleID]
	}
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return ok
}

func (c *TitleCache) TitleCount(playerID uuid.UUID) int {
	c.mu.RLock()
	entry, loaded := c.players[playerID]
	var count int
	if loaded {
		count = len(entry.titles)
	}
	c.mu.RUnlock()

	if !loaded {
		c.triggerLoad(playerID)
	}
	return count
}

// AddTitle records a confirmed grant. No-op while the player is unloaded; the
// next load picks the row up from the repository.
func (c *TitleCache) AddTitle(playerID uuid.UUID, titleID string, data domain.TitleData) {
	c.mu.Lock()
	if entry, ok := c.players[playerID]; ok {
		entry.titles[titleID] = data
	}
	c.mu.Unlock()
}

func (c *TitleCache) RemoveTitle(playerID uuid.UUID, titleID string) {
	c.mu.Lock()
	if entry, ok := c.players[playerID]; ok {
		delete(entry.titles, titleID)
		if entry.currentID == titleID {
			entry.currentID = ""
		}
	}
	c.mu.Unlock()
}

func (c *TitleCache) SetCurrent(playerID uuid.UUID, titleID string) {
	c.mu.Lock()
	if entry, ok := c.players[playerID]; ok {
		if _, owned := entry.titles[titleID]; owned {
			entry.currentID = titleID
		}
	}
	c.mu.Unlock()
}

func (c *TitleCache) ClearCurrent(playerID uuid.UUID) {
	c.mu.Lock()
	if entry, ok := c.players[playerID]; ok {
		entry.currentID = ""
	}
	c.mu.Unlock()
}

func (c *TitleCache) triggerLoad(playerID uuid.UUID) {
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

	c.loader.PlayerTitles(playerID, func(records []domain.PlayerTitleRecord, err error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.loading, playerID)
		if err != nil {
			c.logger.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to load player titles")
			return
		}
		entry := &playerEntry{titles: make(map[string]domain.TitleData, len(records))}
		for _, rec := range records {
			entry.titles[rec.TitleID] = rec.Data
			if rec.OnUse {
				entry.currentID = rec.TitleID
			}
		}
		c.players[playerID] = entry
		c.logger.Debug().
			Str("player_id", playerID.String()).
			Int("titles", len(records)).
			Msg("player titles loaded")
	})
}
