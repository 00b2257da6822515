package rotation

import (
	"title-service/internal/domain"
	"title-service/internal/presence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// titleSource is the slice of the title service the rotation loop reads.
type titleSource interface {
	CurrentTitleID(playerID uuid.UUID) (string, bool)
	CurrentTitle(playerID uuid.UUID) (domain.TitleData, bool)
}

// RenderFunc receives the freshly formatted display line for a player whose
// dynamic title advanced a frame.
type RenderFunc func(playerID uuid.UUID, rendered string)

// Manager drives dynamic titles. Every Tick advances each online player's
// active dynamic title by one frame; static titles are untouched.
type Manager struct {
	titles   titleSource
	presence presence.Presence
	tracker  *Tracker
	render   RenderFunc
	logger   zerolog.Logger
}

func NewManager(titles titleSource, pres presence.Presence, tracker *Tracker, logger zerolog.Logger) *Manager {
	return &Manager{
		titles:   titles,
		presence: pres,
		tracker:  tracker,
		logger:   logger,
	}
}

// SetRenderFunc installs the sink for advanced frames. Without one, Tick
// still advances positions so displays catch up when a sink appears.
func (m *Manager) SetRenderFunc(render RenderFunc) {
	m.render = render
}

// Tick advances every online player's active dynamic title one frame. Runs
// on the shared fixed-rate scheduler and never overlaps itself.
func (m *Manager) Tick() {
	for _, playerID := range m.presence.OnlinePlayers() {
		titleID, ok := m.titles.CurrentTitleID(playerID)
		if !ok {
			continue
		}
		data, ok := m.titles.CurrentTitle(playerID)
		if !ok || !data.IsDynamic() {
			continue
		}
		idx := m.tracker.Advance(playerID, titleID, data.ContentCount())
		if m.render != nil {
			m.render(playerID, data.Formatted(idx))
		}
	}
}

// Rendered formats the player's active title at its current frame. Players
// without an active title get an empty string.
func (m *Manager) Rendered(playerID uuid.UUID) string {
	titleID, ok := m.titles.CurrentTitleID(playerID)
	if !ok {
		return ""
	}
	data, ok := m.titles.CurrentTitle(playerID)
	if !ok {
		return ""
	}
	return data.Formatted(m.tracker.Index(playerID, titleID, data.ContentCount()))
}

// OnPlayerQuit clears the player's frame positions.
func (m *Manager) OnPlayerQuit(playerID uuid.UUID) {
	m.tracker.RemovePlayer(playerID)
}

// OnTitleRevoked clears the frame position of one revoked title.
func (m *Manager) OnTitleRevoked(playerID uuid.UUID, titleID string) {
	m.tracker.RemoveTitle(playerID, titleID)
}
