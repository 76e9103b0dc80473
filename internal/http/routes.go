package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"merac_backend/internal/http/handlers"
	"merac_backend/internal/http/middleware"
)

// RegisterRoutes вешает все маршруты приложения
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// публичные ручки; регистрация и вход под лимитом от перебора
	api.POST("/register", middleware.RateLimit(10, time.Minute), h.Register)
	api.POST("/login", middleware.RateLimit(10, time.Minute), h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/forgot-password-security", middleware.RateLimit(5, time.Minute), h.ForgotPasswordSecurity)
	api.POST("/reset-password-security", middleware.RateLimit(5, time.Minute), h.ResetPasswordSecurity)
	api.GET("/users", h.Users)
	api.GET("/plans", h.Plans)
	api.POST("/validateAddress", h.ValidateAddress)
	api.GET("/networkInfo", h.NetworkInfo)

	// все остальное только с сессией
	auth := api.Group("")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/me", h.Me)
		auth.POST("/subscribe", h.Subscribe)

		auth.GET("/referral-link", h.ReferralLink)
		auth.GET("/referrals/status", h.ReferralStatus)

		auth.GET("/withdrawal-timer", h.WithdrawalTimer)
		auth.POST("/withdraw-daily", h.WithdrawDaily)
		auth.GET("/withdrawal-history", h.WithdrawalHistory)

		auth.GET("/depositAddress", h.DepositAddress)
		auth.GET("/balance", h.Balance)
		auth.POST("/withdraw", h.Withdraw)
		auth.GET("/transactions", h.Transactions)

		auth.GET("/ws", h.WS)
	}
}
