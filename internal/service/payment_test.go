package service

import (
	"sync"
	"testing"

	"title-service/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEconomy struct {
	mu       sync.Mutex
	enabled  bool
	balances map[uuid.UUID]float64
}

func newFakeEconomy(balances map[uuid.UUID]float64) *fakeEconomy {
	return &fakeEconomy{enabled: true, balances: balances}
}

func (f *fakeEconomy) Enabled() bool { return f.enabled }

func (f *fakeEconomy) Balance(playerID uuid.UUID) (float64, error) {
	return f.current(playerID), nil
}

func (f *fakeEconomy) current(playerID uuid.UUID) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID]
}

func (f *fakeEconomy) Has(playerID uuid.UUID, amount float64) bool {
	return f.current(playerID) >= amount
}

func (f *fakeEconomy) Withdraw(playerID uuid.UUID, amount float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[playerID] < amount {
		return false
	}
	f.balances[playerID] -= amount
	return true
}

func (f *fakeEconomy) Deposit(playerID uuid.UUID, amount float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] += amount
	return true
}

func (f *fakeEconomy) WithdrawAsync(playerID uuid.UUID, amount float64, done func(bool)) {
	done(f.Withdraw(playerID, amount))
}

func (f *fakeEconomy) DepositAsync(playerID uuid.UUID, amount float64, done func(bool)) {
	done(f.Deposit(playerID, amount))
}

type fakePoints struct {
	mu       sync.Mutex
	enabled  bool
	balances map[uuid.UUID]int
}

func newFakePoints(balances map[uuid.UUID]int) *fakePoints {
	return &fakePoints{enabled: true, balances: balances}
}

func (f *fakePoints) Enabled() bool { return f.enabled }

func (f *fakePoints) Balance(playerID uuid.UUID) (int, error) {
	return f.current(playerID), nil
}

func (f *fakePoints) current(playerID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID]
}

func (f *fakePoints) Has(playerID uuid.UUID, amount int) bool {
	return f.current(playerID) >= amount
}

func (f *fakePoints) Withdraw(playerID uuid.UUID, amount int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[playerID] < amount {
		return false
	}
	f.balances[playerID] -= amount
	return true
}

func (f *fakePoints) Deposit(playerID uuid.UUID, amount int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] += amount
	return true
}

func (f *fakePoints) WithdrawAsync(playerID uuid.UUID, amount int, done func(bool)) {
	done(f.Withdraw(playerID, amount))
}

func (f *fakePoints) DepositAsync(playerID uuid.UUID, amount int, done func(bool)) {
	done(f.Deposit(playerID, amount))
}

func TestExecuteDebitsBothRails(t *testing.T) {
	playerID := uuid.New()
	eco := newFakeEconomy(map[uuid.UUID]float64{playerID: 150})
	points := newFakePoints(map[uuid.UUID]int{playerID: 10})
	coord := NewPurchaseCoordinator(eco, points, zerolog.Nop())

	require.Equal(t, domain.ResultSuccess, coord.CheckRails(playerID, 100, 5))

	ch := make(chan domain.PurchaseResult, 1)
	coord.Execute(playerID, 100, 5, func(r domain.PurchaseResult) { ch <- r })

	assert.Equal(t, domain.ResultSuccess, <-ch)
	assert.Equal(t, float64(50), eco.current(playerID))
	assert.Equal(t, 5, points.current(playerID))
}

func TestExecuteRefundsCurrencyWhenPointsDebitFails(t *testing.T) {
	playerID := uuid.New()
	eco := newFakeEconomy(map[uuid.UUID]float64{playerID: 150})
	// Enough to pass nothing: the balance drops below the price between
	// CheckRails and the debit.
	points := newFakePoints(map[uuid.UUID]int{playerID: 3})
	coord := NewPurchaseCoordinator(eco, points, zerolog.Nop())

	ch := make(chan domain.PurchaseResult, 1)
	coord.Execute(playerID, 100, 5, func(r domain.PurchaseResult) { ch <- r })

	assert.Equal(t, domain.ResultPaymentFailed, <-ch)
	assert.Equal(t, float64(150), eco.current(playerID), "currency debit must be refunded")
	assert.Equal(t, 3, points.current(playerID))
}

func TestCheckRailsFailsFast(t *testing.T) {
	playerID := uuid.New()
	eco := newFakeEconomy(map[uuid.UUID]float64{playerID: 10})
	points := newFakePoints(map[uuid.UUID]int{playerID: 10})
	coord := NewPurchaseCoordinator(eco, points, zerolog.Nop())

	assert.Equal(t, domain.ResultInsufficientFunds, coord.CheckRails(playerID, 100, 0))

	eco.enabled = false
	assert.Equal(t, domain.ResultPaymentUnavailable, coord.CheckRails(playerID, 100, 0))

	// Free items never touch a rail.
	assert.Equal(t, domain.ResultSuccess, coord.CheckRails(playerID, 0, 0))
}

func TestExecuteZeroPriceCompletesImmediately(t *testing.T) {
	playerID := uuid.New()
	eco := newFakeEconomy(map[uuid.UUID]float64{playerID: 0})
	points := newFakePoints(map[uuid.UUID]int{playerID: 0})
	coord := NewPurchaseCoordinator(eco, points, zerolog.Nop())

	ch := make(chan domain.PurchaseResult, 1)
	coord.Execute(playerID, 0, 0, func(r domain.PurchaseResult) { ch <- r })
	assert.Equal(t, domain.ResultSuccess, <-ch)
}
