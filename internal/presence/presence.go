package presence

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Presence is the presentation-layer contract the core consumes: who is
// online, what they are called, what they may do, and how to reach them.
type Presence interface {
	IsOnline(playerID uuid.UUID) bool
	OnlinePlayers() []uuid.UUID
	Name(playerID uuid.UUID) (string, bool)
	HasPermission(playerID uuid.UUID, permission string) bool
	Notify(playerID uuid.UUID, message string)
}

type playerInfo struct {
	name          string
	permissions   map[string]struct{}
	notifications []string
}

// Roster is the in-process Presence implementation used by the server.
type Roster struct {
	logger zerolog.Logger

	mu      sync.RWMutex
	players map[uuid.UUID]*playerInfo
}

func NewRoster(logger zerolog.Logger) *Roster {
	return &Roster{
		logger:  logger,
		players: make(map[uuid.UUID]*playerInfo),
	}
}

func (r *Roster) Join(playerID uuid.UUID, name string) {
	r.mu.Lock()
	r.players[playerID] = &playerInfo{name: name, permissions: make(map[string]struct{})}
	r.mu.Unlock()
	r.logger.Info().Str("player_id", playerID.String()).Str("name", name).Msg("player joined")
}

func (r *Roster) Leave(playerID uuid.UUID) {
	r.mu.Lock()
	delete(r.players, playerID)
	r.mu.Unlock()
	r.logger.Info().Str("player_id", playerID.String()).Msg("player left")
}

func (r *Roster) Grant(playerID uuid.UUID, permission string) {
	r.mu.Lock()
	if info, ok := r.players[playerID]; ok {
		info.permissions[permission] = struct{}{}
	}
	r.mu.Unlock()
}

func (r *Roster) IsOnline(playerID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[playerID]
	return ok
}

func (r *Roster) OnlinePlayers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(r.players))
	for id := range r.players {
		out = append(out, id)
	}
	return out
}

func (r *Roster) Name(playerID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.players[playerID]
	if !ok {
		return "", false
	}
	return info.name, true
}

func (r *Roster) HasPermission(playerID uuid.UUID, permission string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.players[playerID]
	if !ok {
		return false
	}
	_, granted := info.permissions[permission]
	return granted
}

func (r *Roster) Notify(playerID uuid.UUID, message string) {
	r.mu.Lock()
	info, ok := r.players[playerID]
	if ok {
		info.notifications = append(info.notifications, message)
	}
	r.mu.Unlock()
	if ok {
		r.logger.Debug().Str("player_id", playerID.String()).Str("message", message).Msg("notification queued")
	}
}

// DrainNotifications returns and clears pending notifications for a player.
func (r *Roster) DrainNotifications(playerID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.players[playerID]
	if !ok || len(info.notifications) == 0 {
		return nil
	}
	out := info.notifications
	info.notifications = nil
	return out
}
