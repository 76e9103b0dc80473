package handlers

import (
	"github.com/gin-gonic/gin"

	"merac_backend/internal/domain"
	"merac_backend/internal/service"
	"merac_backend/internal/tron"
	"merac_backend/internal/ws"
)

// Handler собирает зависимости всех ручек
type Handler struct {
	Auth          *service.AuthService
	Subscriptions *service.SubscriptionService
	Withdrawals   *service.WithdrawalService
	Payments      *service.PaymentService
	TronClient    *tron.Client
	Hub           *ws.Hub
	FrontendURL   string
}

// id пользователя из контекста, положенный auth middleware
func getUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// публичное представление пользователя, без паролей и секретных ответов
func userResponse(u *domain.User) gin.H {
	return gin.H{
		"id":                  u.ID,
		"username":            u.Username,
		"email":               u.Email,
		"phone":               u.Phone,
		"plan":                u.Plan,
		"dailyProfit":         u.Plan.DailyProfit(),
		"trc20":               u.TRC20,
		"referralCode":        u.ReferralCode,
		"referredBy":          u.ReferredBy,
		"referralCount":       len(u.Referrals),
		"dayCounter":          u.DayCounter,
		"pendingReferralGate": u.PendingReferralGate,
		"lastWithdrawalAt":    u.LastWithdrawalAt,
		"registeredAt":        u.RegisteredAt,
	}
}
