package rotation

import (
	"testing"

	"title-service/internal/domain"
	"title-service/internal/presence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceWrapsAround(t *testing.T) {
	tr := NewTracker()
	playerID := uuid.New()

	assert.Equal(t, 1, tr.Advance(playerID, "cycle", 3))
	assert.Equal(t, 2, tr.Advance(playerID, "cycle", 3))
	assert.Equal(t, 0, tr.Advance(playerID, "cycle", 3))
	assert.Equal(t, 1, tr.Advance(playerID, "cycle", 3))
}

func TestAdvanceTracksPairsIndependently(t *testing.T) {
	tr := NewTracker()
	a, b := uuid.New(), uuid.New()

	tr.Advance(a, "cycle", 3)
	tr.Advance(a, "cycle", 3)
	assert.Equal(t, 1, tr.Advance(b, "cycle", 3), "each player advances independently")
	assert.Equal(t, 1, tr.Advance(a, "other", 3), "each title advances independently")

	// Switching away and back resumes where the pair left off.
	assert.Equal(t, 2, tr.Index(a, "cycle", 3))
}

func TestAdvanceDegenerateCounts(t *testing.T) {
	tr := NewTracker()
	playerID := uuid.New()

	assert.Equal(t, 0, tr.Advance(playerID, "static", 1))
	assert.Equal(t, 0, tr.Advance(playerID, "empty", 0))
}

func TestRemovePlayerAndTitle(t *testing.T) {
	tr := NewTracker()
	a, b := uuid.New(), uuid.New()

	tr.Advance(a, "cycle", 3)
	tr.Advance(a, "other", 3)
	tr.Advance(b, "cycle", 3)
	require.Equal(t, 3, tr.Size())

	tr.RemoveTitle(a, "cycle")
	assert.Equal(t, 2, tr.Size())
	assert.Equal(t, 1, tr.Advance(a, "cycle", 3), "a removed pair restarts from the beginning")

	tr.RemovePlayer(a)
	assert.Equal(t, 1, tr.Size())
}

type stubTitles struct {
	current map[uuid.UUID]string
	titles  map[string]domain.TitleData
}

func (s *stubTitles) CurrentTitleID(playerID uuid.UUID) (string, bool) {
	id, ok := s.current[playerID]
	return id, ok
}

func (s *stubTitles) CurrentTitle(playerID uuid.UUID) (domain.TitleData, bool) {
	id, ok := s.current[playerID]
	if !ok {
		return domain.TitleData{}, false
	}
	data, ok := s.titles[id]
	return data, ok
}

func TestTickAdvancesOnlyDynamicTitles(t *testing.T) {
	dynamicPlayer, staticPlayer, idlePlayer := uuid.New(), uuid.New(), uuid.New()

	dyn := domain.NewTitleData()
	dyn.Contents = []string{"one", "two", "three"}
	static := domain.NewTitleData()
	static.Contents = []string{"still"}

	titles := &stubTitles{
		current: map[uuid.UUID]string{dynamicPlayer: "cycle", staticPlayer: "plain"},
		titles:  map[string]domain.TitleData{"cycle": dyn, "plain": static},
	}

	roster := presence.NewRoster(zerolog.Nop())
	roster.Join(dynamicPlayer, "Dyn")
	roster.Join(staticPlayer, "Stat")
	roster.Join(idlePlayer, "Idle")

	tracker := NewTracker()
	m := NewManager(titles, roster, tracker, zerolog.Nop())

	rendered := make(map[uuid.UUID][]string)
	m.SetRenderFunc(func(playerID uuid.UUID, line string) {
		rendered[playerID] = append(rendered[playerID], line)
	})

	m.Tick()
	m.Tick()

	require.Len(t, rendered[dynamicPlayer], 2)
	assert.Contains(t, rendered[dynamicPlayer][0], "two")
	assert.Contains(t, rendered[dynamicPlayer][1], "three")
	assert.Empty(t, rendered[staticPlayer])
	assert.Empty(t, rendered[idlePlayer])

	m.Tick()
	assert.Contains(t, m.Rendered(dynamicPlayer), "one", "third tick wraps back to the first frame")
	assert.Contains(t, m.Rendered(staticPlayer), "still")
	assert.Empty(t, m.Rendered(idlePlayer))
}
