package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
	"merac_backend/internal/tron"
	"merac_backend/internal/userstore"
)

const withdrawalCooldown = 24 * time.Hour

var (
	ErrNoActivePlan     = errors.New("no active investment plan")
	ErrReferralRequired = errors.New("invite a referral to continue withdrawals")
	ErrBadAddress       = errors.New("invalid TRC20 address")
)

// ErrCooldown возвращается, когда с прошлого вывода не прошли сутки
type ErrCooldown struct {
	HoursLeft int
}

func (e *ErrCooldown) Error() string {
	return fmt.Sprintf("next withdrawal available in %d hour(s)", e.HoursLeft)
}

// WithdrawalService отвечает за вывод ежедневной прибыли по плану.
// Это отдельный поток денег: прибыль начисляется в момент вывода,
// а не копится на балансе депозитов.
type WithdrawalService struct {
	users *userstore.Store
}

func NewWithdrawalService(users *userstore.Store) *WithdrawalService {
	return &WithdrawalService{users: users}
}

// checkEligibility проверяет все условия вывода в фиксированном порядке:
// план, реферальный гейт, суточный кулдаун
func checkEligibility(user *domain.User, now time.Time) error {
	if user.Plan == domain.PlanVIP0 {
		return ErrNoActivePlan
	}
	if user.PendingReferralGate {
		return ErrReferralRequired
	}
	if user.LastWithdrawalAt != nil {
		elapsed := now.Sub(*user.LastWithdrawalAt)
		if elapsed < withdrawalCooldown {
			left := int(math.Ceil((withdrawalCooldown - elapsed).Hours()))
			return &ErrCooldown{HoursLeft: left}
		}
	}
	return nil
}

// TimerStatus - состояние таймера вывода для фронта
type TimerStatus struct {
	CanWithdraw         bool        `json:"canWithdraw"`
	HoursLeft           int         `json:"hoursLeft"`
	Reason              string      `json:"reason,omitempty"`
	Plan                domain.Plan `json:"plan"`
	DailyProfit         float64     `json:"dailyProfit"`
	PendingReferralGate bool        `json:"pendingReferralGate"`
	LastWithdrawal      *time.Time  `json:"lastWithdrawal,omitempty"`
}

// Timer возвращает, доступен ли вывод прямо сейчас и почему нет
func (s *WithdrawalService) Timer(userID string) (*TimerStatus, error) {
	var out *TimerStatus
	err := s.users.View(func(snap *userstore.Snapshot) error {
		user := snap.FindByID(userID)
		if user == nil {
			return ErrUserNotFound
		}

		st := &TimerStatus{
			Plan:                user.Plan,
			DailyProfit:         user.Plan.DailyProfit(),
			PendingReferralGate: user.PendingReferralGate,
			LastWithdrawal:      user.LastWithdrawalAt,
		}
		switch e := checkEligibility(user, time.Now()).(type) {
		case nil:
			st.CanWithdraw = true
		case *ErrCooldown:
			st.HoursLeft = e.HoursLeft
			st.Reason = e.Error()
		default:
			st.Reason = e.Error()
		}
		out = st
		return nil
	})
	return out, err
}

// Withdraw выводит дневную прибыль на указанный TRC20-адрес.
// При успехе: запись в историю, сдвиг таймера, инкремент счетчика дней;
// на втором подряд дне взводится реферальный гейт.
func (s *WithdrawalService) Withdraw(ctx context.Context, userID, address string) (*domain.WithdrawalRecord, error) {
	if !tron.IsValidAddress(address) {
		return nil, ErrBadAddress
	}

	var out *domain.WithdrawalRecord
	err := s.users.Update(ctx, func(snap *userstore.Snapshot) error {
		user := snap.FindByID(userID)
		if user == nil {
			return ErrUserNotFound
		}

		now := time.Now()
		if err := checkEligibility(user, now); err != nil {
			return err
		}

		record := domain.WithdrawalRecord{
			ID:          uuid.NewString(),
			Type:        "daily_profit",
			Amount:      user.Plan.DailyProfit(),
			Address:     address,
			Status:      "completed",
			CreatedAt:   now,
			ProcessedAt: now,
		}
		user.WithdrawalHistory = append(user.WithdrawalHistory, record)
		user.LastWithdrawalAt = &now
		user.TRC20 = address

		user.DayCounter++
		if user.DayCounter >= 2 && !user.PendingReferralGate {
			user.PendingReferralGate = true
			logger.Info("referral gate armed", "user_id", user.ID, "day_counter", user.DayCounter)
		}

		out = &record
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("daily profit withdrawn", "user_id", userID, "amount", out.Amount, "address", address)
	return out, nil
}

// History возвращает историю выводов прибыли, новые первыми
func (s *WithdrawalService) History(userID string) ([]domain.WithdrawalRecord, error) {
	var out []domain.WithdrawalRecord
	err := s.users.View(func(snap *userstore.Snapshot) error {
		user := snap.FindByID(userID)
		if user == nil {
			return ErrUserNotFound
		}
		out = make([]domain.WithdrawalRecord, len(user.WithdrawalHistory))
		copy(out, user.WithdrawalHistory)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return nil
	})
	return out, err
}
