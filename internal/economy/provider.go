package economy

import "github.com/google/uuid"

// Provider is the currency rail. Withdraw and Deposit report success as a
// boolean; balance errors are treated as insufficient funds by callers.
type Provider interface {
	Enabled() bool
	Balance(playerID uuid.UUID) (float64, error)
	Has(playerID uuid.UUID, amount float64) bool
	Withdraw(playerID uuid.UUID, amount float64) bool
	Deposit(playerID uuid.UUID, amount float64) bool
	WithdrawAsync(playerID uuid.UUID, amount float64, done func(bool))
	DepositAsync(playerID uuid.UUID, amount float64, done func(bool))
}

// PointsProvider is the integer-balance rail.
type PointsProvider interface {
	Enabled() bool
	Balance(playerID uuid.UUID) (int, error)
	Has(playerID uuid.UUID, amount int) bool
	Withdraw(playerID uuid.UUID, amount int) bool
	Deposit(playerID uuid.UUID, amount int) bool
	WithdrawAsync(playerID uuid.UUID, amount int, done func(bool))
	DepositAsync(playerID uuid.UUID, amount int, done func(bool))
}
