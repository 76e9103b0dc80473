package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
	"merac_backend/internal/userstore"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSecurityCheck      = errors.New("security answers do not match")
	ErrSecurityRequired   = errors.New("all four security answers are required")
)

// данные регистрации нового пользователя
type RegisterInput struct {
	Username     string
	Email        string
	Phone        string
	Password     string
	ReferralCode string
	IP           string
	Security     domain.SecurityAnswers
}

type AuthService struct {
	users *userstore.Store
}

func NewAuthService(users *userstore.Store) *AuthService {
	return &AuthService{users: users}
}

// Register создает нового пользователя.
// Реферальный код засчитывается только если ip регистрирующегося
// не встречался в истории пригласившего: дешевая защита от
// самоприглашений с одного устройства.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	// пустой ответ на секретный вопрос делает восстановление пароля тривиальным
	answers := domain.SecurityAnswers{
		School:       normalizeAnswer(in.Security.School),
		Pet:          normalizeAnswer(in.Security.Pet),
		Plan:         normalizeAnswer(in.Security.Plan),
		FirstDeposit: in.Security.FirstDeposit,
	}
	if answers.School == "" || answers.Pet == "" || answers.Plan == "" || answers.FirstDeposit <= 0 {
		return nil, ErrSecurityRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if username == "" {
		// имя по умолчанию - локальная часть email
		username, _, _ = strings.Cut(email, "@")
	}

	user := &domain.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		Phone:           strings.TrimSpace(in.Phone),
		PasswordHash:    string(hash),
		Plan:            domain.PlanVIP0,
		ReferralCode:    newReferralCode(),
		Referrals:       []domain.ReferralCredit{},
		IPHistory:       []string{},
		SecurityAnswers: answers,
		RegisteredAt:    time.Now(),
	}
	user.RecordIP(in.IP)

	err = s.users.Update(ctx, func(snap *userstore.Snapshot) error {
		if snap.FindByEmail(user.Email) != nil {
			return ErrEmailTaken
		}

		if code := strings.TrimSpace(in.ReferralCode); code != "" {
			referrer := snap.FindByReferralCode(code)
			switch {
			case referrer == nil:
				logger.Warn("register: unknown referral code ignored", "code", code)
			case referrer.HasIP(in.IP):
				logger.Warn("register: self-referral attempt ignored", "referrer", referrer.ID, "ip", in.IP)
			default:
				user.ReferredBy = code
			}
		}

		snap.Users = append(snap.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user registered", "user_id", user.ID, "email", user.Email, "referred_by", user.ReferredBy)
	return user, nil
}

// Login проверяет учетные данные и фиксирует ip входа.
// Старые аккаунты с открытым паролем при первом успешном входе
// переводятся на bcrypt, открытый пароль затирается.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.User, error) {
	var out *domain.User

	err := s.users.Update(ctx, func(snap *userstore.Snapshot) error {
		user := snap.FindByEmail(email)
		if user == nil {
			return ErrInvalidCredentials
		}

		switch {
		case user.PasswordHash != "":
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
				return ErrInvalidCredentials
			}
		case user.LegacyPassword != "":
			if user.LegacyPassword != password {
				return ErrInvalidCredentials
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
			user.LegacyPassword = ""
			logger.Info("legacy password upgraded", "user_id", user.ID)
		default:
			return ErrInvalidCredentials
		}

		user.RecordIP(ip)
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID возвращает пользователя по id
func (s *AuthService) GetByID(userID string) (*domain.User, error) {
	var out *domain.User
	err := s.users.View(func(snap *userstore.Snapshot) error {
		u := snap.FindByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		out = u
		return nil
	})
	return out, err
}

// ListUsers возвращает всех пользователей
func (s *AuthService) ListUsers() ([]*domain.User, error) {
	var out []*domain.User
	err := s.users.View(func(snap *userstore.Snapshot) error {
		out = append(out, snap.Users...)
		return nil
	})
	return out, err
}

// SecurityQuestions возвращает список вопросов для восстановления
// без ответов; email нужен только чтобы проверить существование аккаунта
func (s *AuthService) SecurityQuestions(email string) ([]string, error) {
	err := s.users.View(func(snap *userstore.Snapshot) error {
		if snap.FindByEmail(email) == nil {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []string{
		"What is the name of your first school?",
		"What is the name of your first pet?",
		"What was your first investment plan?",
		"What was the amount of your first deposit?",
	}, nil
}

// ResetPasswordBySecurity меняет пароль по секретным вопросам.
// Достаточно трех правильных ответов из четырех.
func (s *AuthService) ResetPasswordBySecurity(ctx context.Context, email, newPassword string, answers domain.SecurityAnswers) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.Update(ctx, func(snap *userstore.Snapshot) error {
		user := snap.FindByEmail(email)
		if user == nil {
			return ErrUserNotFound
		}

		correct := 0
		if normalizeAnswer(answers.School) == user.SecurityAnswers.School {
			correct++
		}
		if normalizeAnswer(answers.Pet) == user.SecurityAnswers.Pet {
			correct++
		}
		if normalizeAnswer(answers.Plan) == user.SecurityAnswers.Plan {
			correct++
		}
		if answers.FirstDeposit == user.SecurityAnswers.FirstDeposit {
			correct++
		}
		if correct < 3 {
			logger.Warn("password reset rejected", "user_id", user.ID, "correct", correct)
			return ErrSecurityCheck
		}

		user.PasswordHash = string(hash)
		user.LegacyPassword = ""
		logger.Info("password reset by security questions", "user_id", user.ID)
		return nil
	})
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// короткий реферальный код из uuid
func newReferralCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
