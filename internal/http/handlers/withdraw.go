package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"merac_backend/internal/service"
)

// Состояние суточного таймера вывода прибыли
func (h *Handler) WithdrawalTimer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.Withdrawals.Timer(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Вывод дневной прибыли на TRC20-адрес
func (h *Handler) WithdrawDaily(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		TRC20 string `json:"trc20" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	record, err := h.Withdrawals.Withdraw(c.Request.Context(), userID, req.TRC20)
	if err != nil {
		var cooldown *service.ErrCooldown
		switch {
		case errors.Is(err, service.ErrBadAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid TRC20 address"})
		case errors.Is(err, service.ErrNoActivePlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "subscribe to a plan first"})
		case errors.Is(err, service.ErrReferralRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "invite a referral to continue withdrawals"})
		case errors.As(err, &cooldown):
			c.JSON(http.StatusBadRequest, gin.H{"error": cooldown.Error(), "hoursLeft": cooldown.HoursLeft})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": record})
}

// История выводов прибыли
func (h *Handler) WithdrawalHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	history, err := h.Withdrawals.History(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// адреса наружу уходят замаскированными
	for i := range history {
		history[i].Address = maskAddress(history[i].Address)
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func maskAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
