package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"title-service/internal/config"
	"title-service/internal/database"
	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*TitleRepository, *sql.DB) {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "titles.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)

	queue := database.NewQueue(db, zerolog.Nop())
	t.Cleanup(func() {
		queue.Close()
		db.Close()
	})
	return NewTitleRepository(queue, zerolog.Nop()), db
}

func addTitle(t *testing.T, repo *TitleRepository, playerID uuid.UUID, titleID string, data domain.TitleData) {
	t.Helper()
	errCh := make(chan error, 1)
	repo.AddOrUpdateTitle(playerID, titleID, data, func(err error) { errCh <- err })
	require.NoError(t, waitErr(t, errCh))
}

func setCurrent(t *testing.T, repo *TitleRepository, playerID uuid.UUID, titleID string) bool {
	t.Helper()
	type outcome struct {
		ok  bool
		err error
	}
	ch := make(chan outcome, 1)
	repo.SetCurrentTitle(playerID, titleID, func(ok bool, err error) { ch <- outcome{ok, err} })
	select {
	case out := <-ch:
		require.NoError(t, out.err)
		return out.ok
	case <-time.After(5 * time.Second):
		t.Fatal("set current title never completed")
		return false
	}
}

func waitErr(t *testing.T, ch chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("operation never completed")
		return nil
	}
}

func countOnUse(t *testing.T, db *sql.DB, playerID uuid.UUID) (int, string) {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM player_titles WHERE player_uuid = ? AND on_use = TRUE`,
		playerID.String()).Scan(&count))

	var current string
	err := db.QueryRow(
		`SELECT title_id FROM player_titles WHERE player_uuid = ? AND on_use = TRUE`,
		playerID.String()).Scan(&current)
	if err == sql.ErrNoRows {
		return count, ""
	}
	require.NoError(t, err)
	return count, current
}

func testTitle(content string) domain.TitleData {
	data := domain.NewTitleData()
	data.Contents = []string{content}
	data.DisplayName = content
	return data
}

func TestSetCurrentTitleKeepsExactlyOneActive(t *testing.T) {
	repo, db := newTestRepo(t)
	playerID := uuid.New()

	addTitle(t, repo, playerID, "alpha", testTitle("Alpha"))
	addTitle(t, repo, playerID, "beta", testTitle("Beta"))

	require.True(t, setCurrent(t, repo, playerID, "alpha"))
	count, current := countOnUse(t, db, playerID)
	assert.Equal(t, 1, count)
	assert.Equal(t, "alpha", current)

	require.True(t, setCurrent(t, repo, playerID, "beta"))
	count, current = countOnUse(t, db, playerID)
	assert.Equal(t, 1, count)
	assert.Equal(t, "beta", current)
}

func TestSetCurrentTitleUnownedRollsBack(t *testing.T) {
	repo, db := newTestRepo(t)
	playerID := uuid.New()

	addTitle(t, repo, playerID, "alpha", testTitle("Alpha"))
	require.True(t, setCurrent(t, repo, playerID, "alpha"))

	// The failed swap must not commit the clearing statement either.
	assert.False(t, setCurrent(t, repo, playerID, "ghost"))
	count, current := countOnUse(t, db, playerID)
	assert.Equal(t, 1, count)
	assert.Equal(t, "alpha", current)
}

func TestAddOrUpdatePreservesOnUseAndObtainedAt(t *testing.T) {
	repo, db := newTestRepo(t)
	playerID := uuid.New()

	addTitle(t, repo, playerID, "alpha", testTitle("Alpha"))
	require.True(t, setCurrent(t, repo, playerID, "alpha"))

	var before int64
	require.NoError(t, db.QueryRow(
		`SELECT obtained_at FROM player_titles WHERE player_uuid = ? AND title_id = ?`,
		playerID.String(), "alpha").Scan(&before))

	time.Sleep(5 * time.Millisecond)
	addTitle(t, repo, playerID, "alpha", testTitle("Alpha Reborn"))

	var (
		raw        string
		onUse      bool
		obtainedAt int64
	)
	require.NoError(t, db.QueryRow(
		`SELECT title_data, on_use, obtained_at FROM player_titles WHERE player_uuid = ? AND title_id = ?`,
		playerID.String(), "alpha").Scan(&raw, &onUse, &obtainedAt))

	assert.True(t, onUse, "re-granting an owned title must not unset it")
	assert.Equal(t, before, obtainedAt, "re-granting must keep the original obtained instant")
	assert.Equal(t, "Alpha Reborn", domain.DecodeTitleData(raw).DisplayName)
}

func TestRemovePlayerTitle(t *testing.T) {
	repo, _ := newTestRepo(t)
	playerID := uuid.New()

	addTitle(t, repo, playerID, "alpha", testTitle("Alpha"))

	ch := make(chan bool, 1)
	repo.RemovePlayerTitle(playerID, "alpha", func(removed bool, err error) {
		require.NoError(t, err)
		ch <- removed
	})
	assert.True(t, <-ch)

	repo.RemovePlayerTitle(playerID, "alpha", func(removed bool, err error) {
		require.NoError(t, err)
		ch <- removed
	})
	assert.False(t, <-ch, "removing an absent row reports false")
}

func TestPlayerTitlesRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	playerID := uuid.New()

	dynamic := domain.NewTitleData()
	dynamic.Contents = []string{"one", "two", "three"}
	addTitle(t, repo, playerID, "cycle", dynamic)
	require.True(t, setCurrent(t, repo, playerID, "cycle"))

	ch := make(chan []domain.PlayerTitleRecord, 1)
	repo.PlayerTitles(playerID, func(records []domain.PlayerTitleRecord, err error) {
		require.NoError(t, err)
		ch <- records
	})
	records := <-ch

	require.Len(t, records, 1)
	assert.Equal(t, "cycle", records[0].TitleID)
	assert.True(t, records[0].OnUse)
	assert.True(t, records[0].Data.IsDynamic())
	assert.Equal(t, 3, records[0].Data.ContentCount())
}
