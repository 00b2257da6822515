package economy

import (
	"encoding/json"
	"fmt"
	"time"
	"title-service/internal/config"
	"title-service/internal/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// walletClient talks to an external wallet HTTP service. A client with an
// empty base URL is permanently disabled.
type walletClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func newWalletClient(baseURL string, logger zerolog.Logger) walletClient {
	return walletClient{
		baseURL: baseURL,
		logger:  logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.WalletTimeout,
			WriteTimeout:        constants.WalletTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type transferRequest struct {
	PlayerID string  `json:"player_id"`
	Amount   float64 `json:"amount"`
}

type transferResponse struct {
	Success bool `json:"success"`
}

func (w walletClient) enabled() bool {
	return w.baseURL != ""
}

func (w walletClient) balance(playerID uuid.UUID) (float64, error) {
	if !w.enabled() {
		return 0, fmt.Errorf("wallet service not configured")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/balance/%s", w.baseURL, playerID.String()))
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := w.client.Do(req, resp); err != nil {
		return 0, fmt.Errorf("wallet request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("wallet returned status %d", resp.StatusCode())
	}

	var out balanceResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, fmt.Errorf("failed to decode wallet response: %w", err)
	}
	return out.Balance, nil
}

func (w walletClient) transfer(path string, playerID uuid.UUID, amount float64) bool {
	if !w.enabled() {
		return false
	}

	body, err := json.Marshal(transferRequest{PlayerID: playerID.String(), Amount: amount})
	if err != nil {
		return false
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := w.client.Do(req, resp); err != nil {
		w.logger.Error().Err(err).Str("path", path).Str("player_id", playerID.String()).Msg("wallet transfer failed")
		return false
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		w.logger.Warn().Int("status", resp.StatusCode()).Str("path", path).Msg("wallet transfer rejected")
		return false
	}

	var out transferResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return false
	}
	return out.Success
}

// CurrencyWallet implements Provider against the economy wallet service.
type CurrencyWallet struct {
	walletClient
}

func NewCurrencyWallet(cfg *config.Config, logger zerolog.Logger) *CurrencyWallet {
	return &CurrencyWallet{walletClient: newWalletClient(cfg.EconomyURL, logger)}
}

func (w *CurrencyWallet) Enabled() bool { return w.enabled() }

func (w *CurrencyWallet) Balance(playerID uuid.UUID) (float64, error) {
	return w.balance(playerID)
}

func (w *CurrencyWallet) Has(playerID uuid.UUID, amount float64) bool {
	balance, err := w.balance(playerID)
	return err == nil && balance >= amount
}

func (w *CurrencyWallet) Withdraw(playerID uuid.UUID, amount float64) bool {
	return w.transfer("/withdraw", playerID, amount)
}

func (w *CurrencyWallet) Deposit(playerID uuid.UUID, amount float64) bool {
	return w.transfer("/deposit", playerID, amount)
}

func (w *CurrencyWallet) WithdrawAsync(playerID uuid.UUID, amount float64, done func(bool)) {
	go func() { done(w.Withdraw(playerID, amount)) }()
}

func (w *CurrencyWallet) DepositAsync(playerID uuid.UUID, amount float64, done func(bool)) {
	go func() { done(w.Deposit(playerID, amount)) }()
}

// PointsWallet implements PointsProvider against the points wallet service.
type PointsWallet struct {
	walletClient
}

func NewPointsWallet(cfg *config.Config, logger zerolog.Logger) *PointsWallet {
	return &PointsWallet{walletClient: newWalletClient(cfg.PointsURL, logger)}
}

func (w *PointsWallet) Enabled() bool { return w.enabled() }

func (w *PointsWallet) Balance(playerID uuid.UUID) (int, error) {
	balance, err := w.balance(playerID)
	return int(balance), err
}

func (w *PointsWallet) Has(playerID uuid.UUID, amount int) bool {
	balance, err := w.balance(playerID)
	return err == nil && int(balance) >= amount
}

func (w *PointsWallet) Withdraw(playerID uuid.UUID, amount int) bool {
	return w.transfer("/withdraw", playerID, float64(amount))
}

func (w *PointsWallet) Deposit(playerID uuid.UUID, amount int) bool {
	return w.transfer("/deposit", playerID, float64(amount))
}

func (w *PointsWallet) WithdrawAsync(playerID uuid.UUID, amount int, done func(bool)) {
	go func() { done(w.Withdraw(playerID, amount)) }()
}

func (w *PointsWallet) DepositAsync(playerID uuid.UUID, amount int, done func(bool)) {
	go func() { done(w.Deposit(playerID, amount)) }()
}
