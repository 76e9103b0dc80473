package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"merac_backend/internal/logger"
)

// Connect открывает пул соединений к postgres и проверяет его
func Connect(url string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Fatal("db: invalid connection config", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("db: ping failed", "error", err)
	}

	logger.Info("db: connected")
	return pool
}
