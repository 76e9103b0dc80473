package service

import (
	"context"
	"errors"
	"time"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
	"merac_backend/internal/userstore"
)

var ErrUnknownPlan = errors.New("unknown plan")

type SubscriptionService struct {
	users *userstore.Store
}

func NewSubscriptionService(users *userstore.Store) *SubscriptionService {
	return &SubscriptionService{users: users}
}

// Subscribe переводит пользователя на план и начисляет реферальный
// кредит пригласившему. Кредит дается один раз на приглашенного и
// только если новый план не ниже текущего плана пригласившего;
// если у пригласившего взведен реферальный гейт, кредит снимает гейт
// и обнуляет счетчик дней.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, plan domain.Plan) (*domain.User, error) {
	// VIP_0 - стартовое состояние, на него нельзя подписаться
	if !plan.Valid() || plan == domain.PlanVIP0 {
		return nil, ErrUnknownPlan
	}

	var out *domain.User
	err := s.users.Update(ctx, func(snap *userstore.Snapshot) error {
		user := snap.FindByID(userID)
		if user == nil {
			return ErrUserNotFound
		}

		user.Plan = plan
		out = user

		if user.ReferredBy == "" {
			return nil
		}
		referrer := snap.FindByReferralCode(user.ReferredBy)
		if referrer == nil || referrer.HasReferralFor(user.ID) {
			return nil
		}
		if plan.Level() < referrer.Plan.Level() {
			return nil
		}

		referrer.Referrals = append(referrer.Referrals, domain.ReferralCredit{
			UserID:    user.ID,
			Plan:      plan,
			IP:        user.LastIP(),
			CreatedAt: time.Now(),
		})
		if referrer.PendingReferralGate {
			referrer.PendingReferralGate = false
			referrer.DayCounter = 0
			logger.Info("referral gate cleared", "referrer", referrer.ID, "referred", user.ID)
		}
		logger.Info("referral credited", "referrer", referrer.ID, "referred", user.ID, "plan", plan)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("plan subscribed", "user_id", userID, "plan", plan)
	return out, nil
}

// ReferralStatus описывает прогресс пользователя по реферальному гейту
type ReferralStatus struct {
	ReferralCode  string                  `json:"referralCode"`
	Referrals     []domain.ReferralCredit `json:"referrals"`
	ReferralCount int                     `json:"referralCount"`
	GateActive    bool                    `json:"gateActive"`
	DayCounter    int                     `json:"dayCounter"`
	CurrentPlan   domain.Plan             `json:"currentPlan"`
	RequiredLevel int                     `json:"requiredLevel"`
}

// Status возвращает реферальное состояние пользователя
func (s *SubscriptionService) Status(userID string) (*ReferralStatus, error) {
	var out *ReferralStatus
	err := s.users.View(func(snap *userstore.Snapshot) error {
		user := snap.FindByID(userID)
		if user == nil {
			return ErrUserNotFound
		}
		out = &ReferralStatus{
			ReferralCode:  user.ReferralCode,
			Referrals:     user.Referrals,
			ReferralCount: len(user.Referrals),
			GateActive:    user.PendingReferralGate,
			DayCounter:    user.DayCounter,
			CurrentPlan:   user.Plan,
			RequiredLevel: user.Plan.Level(),
		}
		return nil
	})
	return out, err
}
