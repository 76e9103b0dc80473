package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Реферальная ссылка пользователя
func (h *Handler) ReferralLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.Auth.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referralCode": user.ReferralCode,
		"referralLink": fmt.Sprintf("%s/register?ref=%s", h.FrontendURL, user.ReferralCode),
	})
}

// Реферальный статус: гейт, счетчик дней, засчитанные приглашения
func (h *Handler) ReferralStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.Subscriptions.Status(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}
