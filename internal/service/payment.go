package service

import (
	"title-service/internal/domain"
	"title-service/internal/economy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentStep is one debit against a single rail, paired with the action that
// undoes it if a later step fails.
type paymentStep struct {
	rail   string
	debit  func(done func(bool))
	refund func() bool
}

// PurchaseCoordinator validates and executes dual-rail payments. Debits run
// sequentially, currency then points; when a later debit fails, every debit
// that already succeeded in the same attempt is refunded before the failure
// is reported, so an attempt never leaves a player debited on one rail while
// failing on the other.
type PurchaseCoordinator struct {
	economy economy.Provider
	points  economy.PointsProvider
	logger  zerolog.Logger
}

func NewPurchaseCoordinator(eco economy.Provider, points economy.PointsProvider, logger zerolog.Logger) *PurchaseCoordinator {
	return &PurchaseCoordinator{economy: eco, points: points, logger: logger}
}

// CheckRails fails fast, before any side effect, when a priced rail is
// unavailable or the balance falls short.
func (p *PurchaseCoordinator) CheckRails(playerID uuid.UUID, priceMoney float64, pricePoints int) domain.PurchaseResult {
	if priceMoney > 0 {
		if !p.economy.Enabled() {
			return domain.ResultPaymentUnavailable
		}
		if !p.economy.Has(playerID, priceMoney) {
			return domain.ResultInsufficientFunds
		}
	}
	if pricePoints > 0 {
		if !p.points.Enabled() {
			return domain.ResultPaymentUnavailable
		}
		if !p.points.Has(playerID, pricePoints) {
			return domain.ResultInsufficientFunds
		}
	}
	return domain.ResultSuccess
}

// Execute runs the debits and reports ResultSuccess or ResultPaymentFailed.
// A zero-priced attempt completes immediately.
func (p *PurchaseCoordinator) Execute(playerID uuid.UUID, priceMoney float64, pricePoints int, done func(domain.PurchaseResult)) {
	var steps []paymentStep
	if priceMoney > 0 {
		steps = append(steps, paymentStep{
			rail:   "currency",
			debit:  func(cb func(bool)) { p.economy.WithdrawAsync(playerID, priceMoney, cb) },
			refund: func() bool { return p.economy.Deposit(playerID, priceMoney) },
		})
	}
	if pricePoints > 0 {
		steps = append(steps, paymentStep{
			rail:   "points",
			debit:  func(cb func(bool)) { p.points.WithdrawAsync(playerID, pricePoints, cb) },
			refund: func() bool { return p.points.Deposit(playerID, pricePoints) },
		})
	}
	p.runSteps(playerID, steps, 0, done)
}

func (p *PurchaseCoordinator) runSteps(playerID uuid.UUID, steps []paymentStep, index int, done func(domain.PurchaseResult)) {
	if index >= len(steps) {
		done(domain.ResultSuccess)
		return
	}

	step := steps[index]
	step.debit(func(ok bool) {
		if ok {
			p.runSteps(playerID, steps, index+1, done)
			return
		}

		// Compensate every completed debit in reverse order.
		for i := index - 1; i >= 0; i-- {
			if !steps[i].refund() {
				p.logger.Error().
					Str("player_id", playerID.String()).
					Str("rail", steps[i].rail).
					Msg("refund failed, player left debited")
			}
		}
		p.logger.Warn().
			Str("player_id", playerID.String()).
			Str("rail", step.rail).
			Msg("debit failed, purchase aborted")
		done(domain.ResultPaymentFailed)
	})
}
