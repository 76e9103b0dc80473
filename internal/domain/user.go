package domain

import "time"

// Запись пользователя. Хранится целиком в снапшоте userstore,
// все мутации идут через очередь записи.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	PasswordHash   string `json:"passwordHash,omitempty"`
	LegacyPassword string `json:"password,omitempty"` // старые аккаунты с открытым паролем, затирается при первом входе

	Plan  Plan   `json:"plan"`
	TRC20 string `json:"trc20,omitempty"` // последний адрес вывода ежедневной прибыли

	ReferralCode string           `json:"referralCode"`
	ReferredBy   string           `json:"referredBy,omitempty"` // код пригласившего, пустой если нет/не засчитан
	Referrals    []ReferralCredit `json:"referrals"`

	IPHistory []string `json:"ipHistory"`

	LastWithdrawalAt    *time.Time         `json:"lastWithdrawalAt,omitempty"`
	DayCounter          int                `json:"dayCounter"`
	PendingReferralGate bool               `json:"pendingReferralGate"`
	WithdrawalHistory   []WithdrawalRecord `json:"withdrawalHistory,omitempty"`

	SecurityAnswers SecurityAnswers `json:"securityQuestions"`
	RegisteredAt    time.Time       `json:"registeredAt"`
}

// Засчитанный реферрал - не больше одной записи на приглашенного
type ReferralCredit struct {
	UserID    string    `json:"userId"`
	Plan      Plan      `json:"plan"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

// Запись в истории выводов ежедневной прибыли
type WithdrawalRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // daily_profit
	Amount      float64   `json:"amount"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Ответы на секретные вопросы для восстановления пароля.
// Текстовые ответы нормализуются (lower + trim) при регистрации.
type SecurityAnswers struct {
	School       string `json:"school"`
	Pet          string `json:"pet"`
	Plan         string `json:"plan"`
	FirstDeposit int    `json:"firstDeposit"`
}

// проверяет, есть ли ip в истории пользователя
func (u *User) HasIP(ip string) bool {
	for _, known := range u.IPHistory {
		if known == ip {
			return true
		}
	}
	return false
}

// добавляет ip в историю, если его там еще нет
func (u *User) RecordIP(ip string) {
	if ip == "" || u.HasIP(ip) {
		return
	}
	u.IPHistory = append(u.IPHistory, ip)
}

// последний известный ip пользователя
func (u *User) LastIP() string {
	if len(u.IPHistory) == 0 {
		return ""
	}
	return u.IPHistory[len(u.IPHistory)-1]
}

// проверяет, есть ли уже реферальная запись за данного пользователя
func (u *User) HasReferralFor(userID string) bool {
	for _, r := range u.Referrals {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
