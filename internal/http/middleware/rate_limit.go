package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"merac_backend/internal/logger"
)

var rdb *redis.Client

// InitRedisRateLimiter подключает redis для лимитов.
// Пустой адрес выключает лимиты целиком.
func InitRedisRateLimiter(addr string) {
	if addr == "" {
		logger.Warn("rate limiter disabled: redis address not set")
		return
	}
	rdb = redis.NewClient(&redis.Options{Addr: addr})
	logger.Info("rate limiter enabled", "redis", addr)
}

// RateLimit ограничивает число запросов с одного ip на маршрут.
// Недоступный redis пропускает запрос: лимиты - защита, не зависимость.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("rl:%s:%s", c.FullPath(), c.ClientIP())

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter: redis unavailable, passing request", "error", err)
			c.Next()
			return
		}
		if n == 1 {
			rdb.Expire(ctx, key, window)
		}
		if n > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
