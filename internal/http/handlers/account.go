package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"merac_backend/internal/domain"
)

// Текущий профиль пользователя
func (h *Handler) Me(c *gin.Context) {
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

	resp := userResponse(user)
	if timer, err := h.Withdrawals.Timer(userID); err == nil {
		resp["canWithdraw"] = timer.CanWithdraw
		resp["hoursLeft"] = timer.HoursLeft
		if user.LastWithdrawalAt != nil {
			resp["nextEligibleAtISO"] = user.LastWithdrawalAt.Add(24 * time.Hour).Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": resp})
}

// Список пользователей (урезанные поля)
func (h *Handler) Users(c *gin.Context) {
	users, err := h.Auth.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"plan":         u.Plan,
			"registeredAt": u.RegisteredAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Список планов с дневной прибылью
func (h *Handler) Plans(c *gin.Context) {
	plans := make([]gin.H, 0, 16)
	for _, p := range domain.AllPlans() {
		plans = append(plans, gin.H{
			"name":        p,
			"level":       p.Level(),
			"dailyProfit": p.DailyProfit(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}
