package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"merac_backend/internal/bot"
	"merac_backend/internal/config"
	"merac_backend/internal/db"
	"merac_backend/internal/domain"
	httpServer "merac_backend/internal/http"
	"merac_backend/internal/http/handlers"
	"merac_backend/internal/http/middleware"
	"merac_backend/internal/logger"
	"merac_backend/internal/repository"
	"merac_backend/internal/service"
	"merac_backend/internal/tron"
	"merac_backend/internal/userstore"
	"merac_backend/internal/ws"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	middleware.InitJWT(cfg.JWTSecret)
	middleware.InitRedisRateLimiter(cfg.RedisAddr)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	users := userstore.Open(cfg.DataFile)
	defer users.Close()

	network := tron.NetworkMainnet
	if cfg.TronNetwork == "testnet" {
		network = tron.NetworkTestnet
	}
	tronClient := tron.NewClient(network, cfg.TronAPIURL, cfg.TronAPIKey, cfg.CompanyAddress)

	addressRepo := repository.NewAddressRepository(dbPool)
	depositRepo := repository.NewDepositRepository(dbPool)
	withdrawalRepo := repository.NewWithdrawalRepository(dbPool)
	balanceRepo := repository.NewBalanceRepository(dbPool)

	// платежные события: ядро пишет, диспетчер разносит по ws и боту
	events := make(chan domain.PaymentEvent, 256)

	authService := service.NewAuthService(users)
	subscriptionService := service.NewSubscriptionService(users)
	withdrawalService := service.NewWithdrawalService(users)
	paymentService := service.NewPaymentService(
		addressRepo, depositRepo, withdrawalRepo, balanceRepo,
		cfg.WithdrawalFee, cfg.MinWithdrawal, events,
	)

	reconciler := service.NewReconciler(
		addressRepo, depositRepo, withdrawalRepo, balanceRepo, tronClient,
		service.ReconcilerConfig{
			DepositInterval:  cfg.DepositCheckInterval,
			WithdrawInterval: cfg.WithdrawProcessInterval,
			BatchSize:        cfg.WithdrawBatchSize,
			BatchDelay:       cfg.WithdrawBatchDelay,
		},
		events,
	)

	hub := ws.NewHub()

	var adminBot *bot.AdminBot
	if cfg.AdminBotToken != "" && len(cfg.AdminTelegramIDs) > 0 {
		var err error
		adminBot, err = bot.NewAdminBot(cfg.AdminBotToken, cfg.AdminTelegramIDs)
		if err != nil {
			log.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
			log.Info("admin bot started", "admin_ids", cfg.AdminTelegramIDs)
		}
	}

	// диспетчер событий
	go func() {
		for ev := range events {
			hub.SendToUser(ev.UserID, ev)
			if adminBot != nil {
				adminBot.NotifyEvent(ev)
			}
		}
	}()

	r := gin.Default()

	// CORS для прода и связи фронта с бэкендом(разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers.Handler{
		Auth:          authService,
		Subscriptions: subscriptionService,
		Withdrawals:   withdrawalService,
		Payments:      paymentService,
		TronClient:    tronClient,
		Hub:           hub,
		FrontendURL:   cfg.FrontendURL,
	}
	httpServer.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	reconciler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	reconciler.Stop()
	if adminBot != nil {
		adminBot.Stop()
	}
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
