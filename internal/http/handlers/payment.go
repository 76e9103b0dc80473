package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"merac_backend/internal/service"
	"merac_backend/internal/tron"
)

// Депозитный адрес пользователя (создается при первом обращении)
func (h *Handler) DepositAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	addr, err := h.Payments.DepositAddress(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address": addr.Address,
		"network": h.TronClient.Network(),
		"token":   "USDT-TRC20",
	})
}

// Баланс депозитного счета
func (h *Handler) Balance(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.Payments.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":   balance.Balance,
		"locked":    balance.LockedBalance,
		"available": balance.Available(),
	})
}

// Заявка на вывод с депозитного баланса
func (h *Handler) Withdraw(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		ToAddress string  `json:"toAddress" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	w, err := h.Payments.RequestWithdrawal(c.Request.Context(), userID, req.ToAddress, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid TRC20 address"})
		case errors.Is(err, service.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount below minimum withdrawal", "min": tron.MinWithdrawal})
		case errors.Is(err, service.ErrInsufficient):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrFeeExceeds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount does not cover the network fee", "fee": tron.WithdrawalFee})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// Депозиты и выводы пользователя
func (h *Handler) Transactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	txs, err := h.Payments.Transactions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// Проверка формата TRON-адреса
func (h *Handler) ValidateAddress(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": tron.IsValidAddress(req.Address)})
}

// Параметры сети для фронта
func (h *Handler) NetworkInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"network":        h.TronClient.Network(),
		"usdtContract":   h.TronClient.Contract(),
		"companyAddress": h.TronClient.CompanyAddress(),
		"withdrawalFee":  tron.WithdrawalFee,
		"minWithdrawal":  tron.MinWithdrawal,
	})
}
