package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"merac_backend/internal/domain"
	"merac_backend/internal/userstore"
)

func newTestUsers(t *testing.T) *userstore.Store {
	t.Helper()
	s := userstore.Open(filepath.Join(t.TempDir(), "users.json"))
	t.Cleanup(s.Close)
	return s
}

func registerUser(t *testing.T, auth *AuthService, email, password, refCode, ip string) *domain.User {
	t.Helper()
	u, err := auth.Register(context.Background(), RegisterInput{
		Username:     "user-" + email,
		Email:        email,
		Password:     password,
		ReferralCode: refCode,
		IP:           ip,
		Security: domain.SecurityAnswers{
			School:       "Lincoln High",
			Pet:          "Rex",
			Plan:         "VIP_1",
			FirstDeposit: 100,
		},
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))

	u := registerUser(t, auth, "alice@example.com", "secret123", "", "1.2.3.4")
	if u.Plan != domain.PlanVIP0 {
		t.Errorf("new user plan = %s, want VIP_0", u.Plan)
	}
	if u.ReferralCode == "" {
		t.Error("referral code not assigned")
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Error("password must be stored hashed")
	}

	got, err := auth.Login(context.Background(), "ALICE@example.com", "secret123", "1.2.3.5")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("login returned wrong user")
	}
	if !got.HasIP("1.2.3.5") {
		t.Error("login ip not recorded")
	}

	if _, err := auth.Login(context.Background(), "alice@example.com", "wrong", "1.2.3.4"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))
	registerUser(t, auth, "bob@example.com", "secret123", "", "1.1.1.1")

	_, err := auth.Register(context.Background(), RegisterInput{
		Username: "bob2",
		Email:    "BOB@example.com",
		Password: "secret123",
		Security: domain.SecurityAnswers{School: "s", Pet: "p", Plan: "VIP_1", FirstDeposit: 50},
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRequiresAllSecurityAnswers(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))

	cases := []struct {
		name    string
		answers domain.SecurityAnswers
	}{
		{"all empty", domain.SecurityAnswers{}},
		{"blank school", domain.SecurityAnswers{School: "  ", Pet: "Rex", Plan: "VIP_1", FirstDeposit: 100}},
		{"missing pet", domain.SecurityAnswers{School: "Lincoln", Plan: "VIP_1", FirstDeposit: 100}},
		{"missing plan", domain.SecurityAnswers{School: "Lincoln", Pet: "Rex", FirstDeposit: 100}},
		{"zero deposit", domain.SecurityAnswers{School: "Lincoln", Pet: "Rex", Plan: "VIP_1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), RegisterInput{
				Email:    "victim@example.com",
				Password: "secret123",
				Security: tc.answers,
			})
			if !errors.Is(err, ErrSecurityRequired) {
				t.Fatalf("want ErrSecurityRequired, got %v", err)
			}
		})
	}

	// у полностью заполненного аккаунта пустые ответы не проходят проверку
	registerUser(t, auth, "victim@example.com", "secret123", "", "3.3.3.3")
	err := auth.ResetPasswordBySecurity(context.Background(), "victim@example.com", "attacker1", domain.SecurityAnswers{})
	if !errors.Is(err, ErrSecurityCheck) {
		t.Fatalf("blank-answer reset: want ErrSecurityCheck, got %v", err)
	}
	if _, err := auth.Login(context.Background(), "victim@example.com", "attacker1", "3.3.3.4"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("password must be unchanged after rejected reset, got %v", err)
	}
}

func TestRegisterDefaultsUsernameToEmailLocalPart(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))

	u, err := auth.Register(context.Background(), RegisterInput{
		Email:    "Carol.M@Example.com",
		Password: "secret123",
		Security: domain.SecurityAnswers{School: "s", Pet: "p", Plan: "VIP_1", FirstDeposit: 50},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "carol.m" {
		t.Errorf("username = %q, want %q", u.Username, "carol.m")
	}
}

func TestReferralCodeHonored(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))
	referrer := registerUser(t, auth, "ref@example.com", "secret123", "", "10.0.0.1")

	invited := registerUser(t, auth, "new@example.com", "secret123", referrer.ReferralCode, "10.0.0.2")
	if invited.ReferredBy != referrer.ReferralCode {
		t.Errorf("referredBy = %q, want %q", invited.ReferredBy, referrer.ReferralCode)
	}
}

func TestSelfReferralByIPIgnored(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))
	referrer := registerUser(t, auth, "ref@example.com", "secret123", "", "10.0.0.1")

	// регистрация с ip, который уже есть в истории пригласившего
	invited := registerUser(t, auth, "clone@example.com", "secret123", referrer.ReferralCode, "10.0.0.1")
	if invited.ReferredBy != "" {
		t.Errorf("self-referral must be ignored, got referredBy = %q", invited.ReferredBy)
	}
}

func TestUnknownReferralCodeIgnored(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))
	u := registerUser(t, auth, "x@example.com", "secret123", "nosuchcode", "10.0.0.9")
	if u.ReferredBy != "" {
		t.Errorf("unknown code must be ignored, got %q", u.ReferredBy)
	}
}

func TestLegacyPasswordUpgradedOnLogin(t *testing.T) {
	users := newTestUsers(t)
	auth := NewAuthService(users)

	users.Update(context.Background(), func(snap *userstore.Snapshot) error {
		snap.Users = append(snap.Users, &domain.User{
			ID:             "legacy1",
			Email:          "old@example.com",
			LegacyPassword: "plaintext",
		})
		return nil
	})

	got, err := auth.Login(context.Background(), "old@example.com", "plaintext", "2.2.2.2")
	if err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if got.LegacyPassword != "" {
		t.Error("legacy password must be wiped after upgrade")
	}
	if bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("plaintext")) != nil {
		t.Error("upgraded hash does not match the password")
	}

	// повторный вход уже по хешу
	if _, err := auth.Login(context.Background(), "old@example.com", "plaintext", "2.2.2.2"); err != nil {
		t.Fatalf("second login after upgrade: %v", err)
	}
}

func TestResetPasswordBySecurity(t *testing.T) {
	auth := NewAuthService(newTestUsers(t))
	registerUser(t, auth, "alice@example.com", "oldpass1", "", "1.1.1.1")

	// трех верных ответов из четырех достаточно
	err := auth.ResetPasswordBySecurity(context.Background(), "alice@example.com", "newpass1", domain.SecurityAnswers{
		School:       "  LINCOLN high ", // нормализация
		Pet:          "Rex",
		Plan:         "VIP_1",
		FirstDeposit: 999, // неверный
	})
	if err != nil {
		t.Fatalf("reset with 3/4 answers: %v", err)
	}
	if _, err := auth.Login(context.Background(), "alice@example.com", "newpass1", "1.1.1.1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// двух верных мало
	err = auth.ResetPasswordBySecurity(context.Background(), "alice@example.com", "hacked99", domain.SecurityAnswers{
		School:       "Lincoln High",
		Pet:          "Rex",
		Plan:         "wrong",
		FirstDeposit: 999,
	})
	if !errors.Is(err, ErrSecurityCheck) {
		t.Fatalf("reset with 2/4 answers: want ErrSecurityCheck, got %v", err)
	}
}
