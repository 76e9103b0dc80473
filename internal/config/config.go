package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Конфигурация приложения, читается из окружения (.env поддерживается)
type Config struct {
	AppPort     string
	DataFile    string // снапшот пользователей
	DatabaseURL string // postgres для леджера (адреса/депозиты/выводы/балансы)
	RedisAddr   string
	JWTSecret   string
	FrontendURL string

	TronNetwork    string // mainnet | testnet
	TronAPIURL     string
	TronAPIKey     string
	CompanyAddress string

	DepositCheckInterval    time.Duration
	WithdrawProcessInterval time.Duration
	WithdrawBatchSize       int
	WithdrawBatchDelay      time.Duration
	WithdrawalFee           float64
	MinWithdrawal           float64

	AdminBotToken    string
	AdminTelegramIDs []int64
}

// Load читает конфигурацию из окружения
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "5000"),
		DataFile:    getEnv("DATA_FILE", "data.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   getEnv("JWT_SECRET", "merac-session-secret"),
		FrontendURL: getEnv("FRONTEND_URL", "https://merac.app"),

		TronNetwork:    getEnv("TRON_NETWORK", "mainnet"),
		TronAPIURL:     os.Getenv("TRON_API_URL"),
		TronAPIKey:     os.Getenv("TRON_API_KEY"),
		CompanyAddress: getEnv("COMPANY_TRC20_ADDRESS", "TR4Z3fYtTgGp5McMcyQrNgGjRL6jQESXBx"),

		DepositCheckInterval:    getDuration("DEPOSIT_CHECK_INTERVAL", 30*time.Second),
		WithdrawProcessInterval: getDuration("WITHDRAW_PROCESS_INTERVAL", time.Minute),
		WithdrawBatchSize:       getInt("WITHDRAW_BATCH_SIZE", 10),
		WithdrawBatchDelay:      getDuration("WITHDRAW_BATCH_DELAY", 5*time.Second),
		WithdrawalFee:           getFloat("WITHDRAWAL_FEE", 1),
		MinWithdrawal:           getFloat("MIN_WITHDRAWAL", 1),

		AdminBotToken: os.Getenv("ADMIN_BOT_TOKEN"),
	}

	// список telegram id админов через запятую
	if raw := os.Getenv("ADMIN_TELEGRAM_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil && id != 0 {
				cfg.AdminTelegramIDs = append(cfg.AdminTelegramIDs, id)
			}
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
