package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTitleLoader struct {
	loads   atomic.Int32
	delay   time.Duration
	records []domain.PlayerTitleRecord
}

func (l *stubTitleLoader) PlayerTitles(playerID uuid.UUID, done func([]domain.PlayerTitleRecord, error)) {
	l.loads.Add(1)
	go func() {
		time.Sleep(l.delay)
		done(l.records, nil)
	}()
}

func ownedTitle(titleID string, onUse bool) domain.PlayerTitleRecord {
	data := domain.NewTitleData()
	data.Contents = []string{titleID}
	return domain.PlayerTitleRecord{TitleID: titleID, Data: data, OnUse: onUse}
}

func TestConcurrentReadsTriggerSingleLoad(t *testing.T) {
	loader := &stubTitleLoader{
		delay:   20 * time.Millisecond,
		records: []domain.PlayerTitleRecord{ownedTitle("alpha", true)},
	}
	c := NewTitleCache(loader, zerolog.Nop())
	playerID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Zero values while unloaded, never a blocked read.
			_ = c.PlayerTitles(playerID)
			_, _ = c.CurrentTitle(playerID)
			_ = c.HasTitle(playerID, "alpha")
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return c.IsLoaded(playerID) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), loader.loads.Load(), "overlapping reads must share one load")

	assert.True(t, c.HasTitle(playerID, "alpha"))
	current, ok := c.CurrentTitleID(playerID)
	require.True(t, ok)
	assert.Equal(t, "alpha", current)
}

func TestUnloadedReadsReturnZeroValues(t *testing.T) {
	loader := &stubTitleLoader{delay: 50 * time.Millisecond}
	c := NewTitleCache(loader, zerolog.Nop())
	playerID := uuid.New()

	assert.Empty(t, c.PlayerTitles(playerID))
	assert.False(t, c.HasTitle(playerID, "alpha"))
	assert.Zero(t, c.TitleCount(playerID))
	_, ok := c.CurrentTitle(playerID)
	assert.False(t, ok)
}

func TestWriteThroughMutations(t *testing.T) {
	loader := &stubTitleLoader{}
	c := NewTitleCache(loader, zerolog.Nop())
	playerID := uuid.New()

	c.Load(playerID)
	require.Eventually(t, func() bool { return c.IsLoaded(playerID) }, time.Second, time.Millisecond)

	data := domain.NewTitleData()
	data.Contents = []string{"hi"}
	c.AddTitle(playerID, "alpha", data)
	assert.True(t, c.HasTitle(playerID, "alpha"))

	// The current pointer only ever points at an owned title.
	c.SetCurrent(playerID, "ghost")
	_, ok := c.CurrentTitleID(playerID)
	assert.False(t, ok)

	c.SetCurrent(playerID, "alpha")
	current, ok := c.CurrentTitleID(playerID)
	require.True(t, ok)
	assert.Equal(t, "alpha", current)

	c.RemoveTitle(playerID, "alpha")
	assert.False(t, c.HasTitle(playerID, "alpha"))
	_, ok = c.CurrentTitleID(playerID)
	assert.False(t, ok, "removing the active title clears the pointer")
}

func TestMutationsOnUnloadedPlayerAreDropped(t *testing.T) {
	loader := &stubTitleLoader{delay: time.Hour}
	c := NewTitleCache(loader, zerolog.Nop())
	playerID := uuid.New()

	data := domain.NewTitleData()
	c.AddTitle(playerID, "alpha", data)
	assert.False(t, c.IsLoaded(playerID))
	assert.False(t, c.HasTitle(playerID, "alpha"))
}

func TestUnloadDropsState(t *testing.T) {
	loader := &stubTitleLoader{records: []domain.PlayerTitleRecord{ownedTitle("alpha", false)}}
	c := NewTitleCache(loader, zerolog.Nop())
	playerID := uuid.New()

	c.Load(playerID)
	require.Eventually(t, func() bool { return c.IsLoaded(playerID) }, time.Second, time.Millisecond)

	c.UnloadPlayer(playerID)
	assert.False(t, c.IsLoaded(playerID))
}
