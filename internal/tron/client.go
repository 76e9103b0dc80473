package tron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"

	"merac_backend/internal/logger"
)

// результат перевода USDT
type TransferResult struct {
	TxID      string  `json:"txid"`
	Amount    float64 `json:"amount"`
	NetAmount float64 `json:"net_amount"`
}

// Client ходит в TRON API за балансами и выполняет переводы.
// Переводы в текущей сборке симулируются: подпись транзакций живет
// во внешнем кастодиальном сервисе, сюда она не встраивается.
type Client struct {
	baseURL        string
	apiKey         string
	network        Network
	usdtContract   string
	companyAddress string
	httpClient     *http.Client
}

// создает новый клиент TRON API
func NewClient(network Network, apiURL, apiKey, companyAddress string) *Client {
	baseURL := TronGridMainnet
	if network == NetworkTestnet {
		baseURL = TronGridTestnet
	}
	if apiURL != "" {
		baseURL = apiURL
	}

	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		network:        network,
		usdtContract:   USDTContract(network),
		companyAddress: companyAddress,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// сеть клиента
func (c *Client) Network() Network { return c.network }

// адрес контракта USDT для текущей сети
func (c *Client) Contract() string { return c.usdtContract }

// депозитный адрес компании
func (c *Client) CompanyAddress() string { return c.companyAddress }

// ответ trongrid /v1/accounts/{addr}
type accountResponse struct {
	Data []struct {
		TRC20 []map[string]string `json:"trc20"`
	} `json:"data"`
}

// USDTBalance читает текущий USDT-баланс адреса
func (c *Client) USDTBalance(ctx context.Context, address string) (float64, error) {
	reqURL := fmt.Sprintf("%s/v1/accounts/%s", c.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("tron api: %s - %s", resp.Status, string(body))
	}

	var account accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return 0, err
	}

	if len(account.Data) == 0 {
		return 0, nil
	}

	// trc20 приходит списком пар контракт -> сумма в минимальных единицах
	for _, entry := range account.Data[0].TRC20 {
		raw, ok := entry[c.usdtContract]
		if !ok {
			continue
		}
		units, ok := new(big.Float).SetString(raw)
		if !ok {
			return 0, fmt.Errorf("tron api: bad trc20 amount %q", raw)
		}
		// USDT хранится с 6 знаками
		usdt, _ := new(big.Float).Quo(units, big.NewFloat(1_000_000)).Float64()
		return usdt, nil
	}

	return 0, nil
}

// SendUSDT выполняет перевод USDT на указанный адрес.
// Симуляция: реальная подпись и бродкаст - зона кастодиального сервиса.
func (c *Client) SendUSDT(ctx context.Context, toAddress string, amount float64) (*TransferResult, error) {
	if !IsValidAddress(toAddress) {
		return nil, fmt.Errorf("invalid TRON address: %s", toAddress)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("invalid transfer amount: %f", amount)
	}

	// имитируем сетевую задержку подтверждения
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	txid := "send_" + uuid.NewString()
	logger.Info("tron: simulated USDT transfer", "to", toAddress, "amount", amount, "txid", txid)

	return &TransferResult{
		TxID:      txid,
		Amount:    amount,
		NetAmount: amount,
	}, nil
}
