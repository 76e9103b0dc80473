package tron

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"time"
)

const (
	// фиксированная комиссия платформы на вывод, USDT
	WithdrawalFee = 1

	// минимальная сумма вывода, USDT (совпадает с дневной прибылью VIP_1)
	MinWithdrawal = 1

	// размер пачки при обработке ожидающих выводов
	WithdrawBatchSize = 10

	// пауза между пачками выводов
	WithdrawBatchDelay = 5 * time.Second

	// интервал сверки депозитов
	DepositCheckInterval = 30 * time.Second

	// интервал обработки ожидающих выводов
	WithdrawProcessInterval = 1 * time.Minute

	// таймаут на один внешний вызов (баланс/перевод);
	// зависший вызов не должен блокировать тик навсегда
	ExternalCallTimeout = 25 * time.Second
)

// тип сети TRON
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// контракты USDT (TRC20) по сетям
const (
	USDTContractMainnet = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	USDTContractTestnet = "TG3XXyExBkPp9nzdajDZsozEu4BkaSJozs"
)

// конечные точки TRON API
const (
	TronGridMainnet = "https://api.trongrid.io"
	TronGridTestnet = "https://api.shasta.trongrid.io"
)

// возвращает адрес контракта USDT для сети
func USDTContract(network Network) string {
	if network == NetworkTestnet {
		return USDTContractTestnet
	}
	return USDTContractMainnet
}

// base58-адрес TRON: 'T' + 33 символа
var addressRe = regexp.MustCompile(`^T[A-Za-z1-9]{33}$`)

// проверяет формат TRON-адреса
func IsValidAddress(address string) bool {
	return addressRe.MatchString(address)
}

// генерирует уникальный депозитный адрес для пользователя.
// Детерминированной привязки к ключам нет - адреса раздает
// внешний кастодиальный сервис, здесь только форма.
func GenerateUserAddress(userID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", userID, time.Now().UnixNano())))
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	out := make([]byte, 33)
	for i := 0; i < 33; i++ {
		out[i] = alphabet[int(sum[i%len(sum)])%len(alphabet)]
	}
	return "T" + string(out)
}
