package session

import (
	"sync"
	"time"

	"title-service/internal/config"
	"title-service/internal/domain"
	"title-service/internal/presence"
	"title-service/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TitleCreator is the slice of the title service the flow commits through.
type TitleCreator interface {
	CreateCustomTitle(req service.CustomTitleRequest, done func(domain.PurchaseResult))
	CheckTitleIDExists(playerID uuid.UUID, titleID string, done func(bool))
	CustomPrice(dynamic bool) (float64, int)
}

// TimeoutMessage is delivered to a still-reachable player whose session the
// sweep evicted.
const TimeoutMessage = "custom title session timed out"

// Manager owns at most one creation session per player. Expiry is observed
// both proactively (the fixed-rate Sweep) and reactively (Session evicts a
// stale entry on read). Rejecting "already has a session" is left to callers.
type Manager struct {
	cfg      *config.Config
	creator  TitleCreator
	presence presence.Presence
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewManager(cfg *config.Config, creator TitleCreator, pres presence.Presence, logger zerolog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		creator:  creator,
		presence: pres,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// StartSession opens a fresh session at the type-selection stage, replacing
// any previous one for the player.
func (m *Manager) StartSession(playerID uuid.UUID, playerName string) Session {
	now := m.now()
	s := &Session{
		PlayerID:    playerID,
		PlayerName:  playerName,
		Stage:       StageSelectType,
		CreatedAt:   now,
		RefreshedAt: now,
	}
	m.mu.Lock()
	m.sessions[playerID] = s
	m.mu.Unlock()
	m.logger.Debug().Str("player_id", playerID.String()).Msg("custom title session started")
	return s.snapshot()
}

// Session returns the player's live session, evicting it first if it has
// outlived the configured timeout.
func (m *Manager) Session(playerID uuid.UUID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	if !ok {
		return Session{}, false
	}
	if s.expired(m.now(), m.cfg.SessionTimeout) {
		delete(m.sessions, playerID)
		return Session{}, false
	}
	return s.snapshot(), true
}

func (m *Manager) HasSession(playerID uuid.UUID) bool {
	_, ok := m.Session(playerID)
	return ok
}

func (m *Manager) RemoveSession(playerID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, playerID)
	m.mu.Unlock()
}

// RemainingSeconds reports how long the session has before the sweep takes it.
func (m *Manager) RemainingSeconds(playerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	if !ok {
		return 0
	}
	remaining := m.cfg.SessionTimeout - m.now().Sub(s.RefreshedAt)
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// Sweep evicts every session older than the timeout and notifies each evicted
// player that is still reachable. Runs on the shared fixed-rate scheduler.
func (m *Manager) Sweep(now time.Time) {
	var evicted []uuid.UUID
	m.mu.Lock()
	for playerID, s := range m.sessions {
		if s.expired(now, m.cfg.SessionTimeout) {
			delete(m.sessions, playerID)
			evicted = append(evicted, playerID)
		}
	}
	m.mu.Unlock()

	for _, playerID := range evicted {
		m.logger.Info().Str("player_id", playerID.String()).Msg("custom title session timed out")
		if m.presence.IsOnline(playerID) {
			m.presence.Notify(playerID, TimeoutMessage)
		}
	}
}

// Shutdown drops every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()
}
