package service

import (
	"errors"
	"sync"
	"testing"

	"title-service/internal/cache"
	"title-service/internal/config"
	"title-service/internal/domain"
	"title-service/internal/presence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps rows in memory and completes callbacks inline, standing in
// for the write queue plus repository.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]map[string]domain.TitleData
	current map[uuid.UUID]string
	failAdd bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:    make(map[uuid.UUID]map[string]domain.TitleData),
		current: make(map[uuid.UUID]string),
	}
}

func (f *fakeStore) AddOrUpdateTitle(playerID uuid.UUID, titleID string, data domain.TitleData, done func(error)) {
	f.mu.Lock()
	if f.failAdd {
		f.mu.Unlock()
		done(errors.New("disk full"))
		return
	}
	if f.rows[playerID] == nil {
		f.rows[playerID] = make(map[string]domain.TitleData)
	}
	f.rows[playerID][titleID] = data
	f.mu.Unlock()
	done(nil)
}

func (f *fakeStore) SetCurrentTitle(playerID uuid.UUID, titleID string, done func(bool, error)) {
	f.mu.Lock()
	_, owned := f.rows[playerID][titleID]
	if owned {
		f.current[playerID] = titleID
	}
	f.mu.Unlock()
	done(owned, nil)
}

func (f *fakeStore) ClearCurrentTitle(playerID uuid.UUID, done func(error)) {
	f.mu.Lock()
	delete(f.current, playerID)
	f.mu.Unlock()
	done(nil)
}

func (f *fakeStore) RemovePlayerTitle(playerID uuid.UUID, titleID string, done func(bool, error)) {
	f.mu.Lock()
	_, owned := f.rows[playerID][titleID]
	delete(f.rows[playerID], titleID)
	f.mu.Unlock()
	done(owned, nil)
}

func (f *fakeStore) TitleExists(playerID uuid.UUID, titleID string, done func(bool, error)) {
	f.mu.Lock()
	_, owned := f.rows[playerID][titleID]
	f.mu.Unlock()
	done(owned, nil)
}

// PlayerTitles lets the fake double as the cache loader.
func (f *fakeStore) PlayerTitles(playerID uuid.UUID, done func([]domain.PlayerTitleRecord, error)) {
	f.mu.Lock()
	var records []domain.PlayerTitleRecord
	for titleID, data := range f.rows[playerID] {
		records = append(records, domain.PlayerTitleRecord{
			TitleID: titleID,
			Data:    data,
			OnUse:   f.current[playerID] == titleID,
		})
	}
	f.mu.Unlock()
	done(records, nil)
}

type fakePresets struct {
	titles map[string]domain.TitleData
}

func (f *fakePresets) Preset(titleID string) (domain.TitleData, bool) {
	data, ok := f.titles[titleID]
	return data, ok
}

func (f *fakePresets) Presets() map[string]domain.TitleData {
	return f.titles
}

type titleFixture struct {
	svc     *TitleService
	store   *fakeStore
	eco     *fakeEconomy
	points  *fakePoints
	roster  *presence.Roster
	presets *fakePresets
	cfg     *config.Config
}

func newTitleFixture(t *testing.T, playerID uuid.UUID) *titleFixture {
	t.Helper()
	cfg := &config.Config{
		CustomTitleEnabled:  true,
		MaxContentLength:    16,
		MaxNameLength:       12,
		ForbiddenWords:      []string{"badword"},
		CustomPriceMoney:    1000,
		DynamicPriceMoney:   5000,
		DynamicMaxContents:  5,
		DefaultBracketLeft:  "[",
		DefaultBracketRight: "]",
	}
	store := newFakeStore()
	eco := newFakeEconomy(map[uuid.UUID]float64{playerID: 10000})
	points := newFakePoints(map[uuid.UUID]int{playerID: 100})
	roster := presence.NewRoster(zerolog.Nop())
	presets := &fakePresets{titles: make(map[string]domain.TitleData)}

	titleCache := cache.NewTitleCache(store, zerolog.Nop())
	svc := NewTitleService(cfg, store, titleCache, presets,
		NewPurchaseCoordinator(eco, points, zerolog.Nop()), roster, zerolog.Nop())

	roster.Join(playerID, "Steve")
	svc.OnPlayerJoin(playerID)
	return &titleFixture{svc: svc, store: store, eco: eco, points: points, roster: roster, presets: presets, cfg: cfg}
}

func purchase(t *testing.T, svc *TitleService, playerID uuid.UUID, titleID string) domain.PurchaseResult {
	t.Helper()
	ch := make(chan domain.PurchaseResult, 1)
	svc.PurchasePreset(playerID, titleID, func(r domain.PurchaseResult) { ch <- r })
	return <-ch
}

func presetTitle(price float64, permission string) domain.TitleData {
	data := domain.NewTitleData()
	data.Contents = []string{"VIP"}
	data.PriceMoney = price
	data.Permission = permission
	return data
}

func TestPurchasePresetHappyPath(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.presets.titles["vip"] = presetTitle(1500, "")

	require.Equal(t, domain.ResultSuccess, purchase(t, fx.svc, playerID, "vip"))
	assert.Equal(t, float64(8500), fx.eco.current(playerID))
	assert.True(t, fx.svc.HasTitle(playerID, "vip"))

	assert.Equal(t, domain.ResultAlreadyOwned, purchase(t, fx.svc, playerID, "vip"))
	assert.Equal(t, float64(8500), fx.eco.current(playerID), "owned titles are never re-charged")
}

func TestPurchasePresetUnknownTitle(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	assert.Equal(t, domain.ResultNotFound, purchase(t, fx.svc, playerID, "ghost"))
}

func TestPurchasePresetPermissionGate(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.presets.titles["elite"] = presetTitle(100, "titles.elite")

	assert.Equal(t, domain.ResultPermissionDenied, purchase(t, fx.svc, playerID, "elite"))

	fx.roster.Grant(playerID, "titles.elite")
	assert.Equal(t, domain.ResultSuccess, purchase(t, fx.svc, playerID, "elite"))
}

func TestPurchasePresetInsufficientFunds(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.presets.titles["vip"] = presetTitle(99999, "")

	assert.Equal(t, domain.ResultInsufficientFunds, purchase(t, fx.svc, playerID, "vip"))
	assert.Equal(t, float64(10000), fx.eco.current(playerID))
}

func TestPurchasePersistenceFailureIsNotRefunded(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.presets.titles["vip"] = presetTitle(1500, "")
	fx.store.failAdd = true

	assert.Equal(t, domain.ResultDatabaseError, purchase(t, fx.svc, playerID, "vip"))
	assert.Equal(t, float64(8500), fx.eco.current(playerID), "payment is kept when persistence fails")
	assert.False(t, fx.svc.HasTitle(playerID, "vip"))
}

func TestSetCurrentTitleRequiresOwnership(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.presets.titles["vip"] = presetTitle(0, "")
	require.Equal(t, domain.ResultSuccess, purchase(t, fx.svc, playerID, "vip"))

	ch := make(chan bool, 1)
	fx.svc.SetCurrentTitle(playerID, "ghost", func(ok bool) { ch <- ok })
	assert.False(t, <-ch)

	fx.svc.SetCurrentTitle(playerID, "vip", func(ok bool) { ch <- ok })
	assert.True(t, <-ch)

	current, ok := fx.svc.CurrentTitleID(playerID)
	require.True(t, ok)
	assert.Equal(t, "vip", current)

	fx.svc.ClearCurrentTitle(playerID, func(ok bool) { ch <- ok })
	assert.True(t, <-ch)
	_, ok = fx.svc.CurrentTitleID(playerID)
	assert.False(t, ok)
}

func TestCreateCustomTitleValidation(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)

	create := func(req CustomTitleRequest) domain.PurchaseResult {
		ch := make(chan domain.PurchaseResult, 1)
		fx.svc.CreateCustomTitle(req, func(r domain.PurchaseResult) { ch <- r })
		return <-ch
	}
	base := CustomTitleRequest{PlayerID: playerID, PlayerName: "Steve", Name: "tag"}

	tooLong := base
	tooLong.Contents = []string{"this content line is far too long"}
	assert.Equal(t, domain.ResultTooLong, create(tooLong))

	forbidden := base
	forbidden.Contents = []string{"a BadWord here"}
	assert.Equal(t, domain.ResultForbiddenWord, create(forbidden))

	longName := base
	longName.Contents = []string{"hello"}
	longName.Name = "thisnameisfartoolong"
	assert.Equal(t, domain.ResultNameTooLong, create(longName))

	fewFrames := base
	fewFrames.Contents = []string{"only one"}
	fewFrames.Dynamic = true
	assert.Equal(t, domain.ResultValidationError, create(fewFrames))

	ok := base
	ok.Contents = []string{"hello"}
	require.Equal(t, domain.ResultSuccess, create(ok))
	assert.Equal(t, float64(9000), fx.eco.current(playerID))
	assert.True(t, fx.svc.HasTitle(playerID, "Steve_tag"))

	// The derived id is taken now, by the cache before the database.
	assert.Equal(t, domain.ResultNameDuplicate, create(ok))
}

func TestCreateDynamicCustomTitle(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)

	ch := make(chan domain.PurchaseResult, 1)
	fx.svc.CreateCustomTitle(CustomTitleRequest{
		PlayerID:   playerID,
		PlayerName: "Steve",
		Contents:   []string{"one", "two", "three"},
		Name:       "cycle",
		Dynamic:    true,
	}, func(r domain.PurchaseResult) { ch <- r })

	require.Equal(t, domain.ResultSuccess, <-ch)
	assert.Equal(t, float64(5000), fx.eco.current(playerID), "dynamic titles bill the dynamic price")

	titles := fx.svc.PlayerTitles(playerID)
	data, ok := titles["Steve_cycle"]
	require.True(t, ok)
	assert.True(t, data.IsDynamic())
	assert.Equal(t, domain.TitleCustom, data.Type)
}

func TestCustomTitleDisabled(t *testing.T) {
	playerID := uuid.New()
	fx := newTitleFixture(t, playerID)
	fx.cfg.CustomTitleEnabled = false

	ch := make(chan domain.PurchaseResult, 1)
	fx.svc.CreateCustomTitle(CustomTitleRequest{
		PlayerID:   playerID,
		PlayerName: "Steve",
		Contents:   []string{"hello"},
		Name:       "tag",
	}, func(r domain.PurchaseResult) { ch <- r })
	assert.Equal(t, domain.ResultCustomDisabled, <-ch)
}
