package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"merac_backend/internal/domain"
	"merac_backend/internal/http/middleware"
	"merac_backend/internal/service"
)

type securityAnswersBody struct {
	School       string `json:"school"`
	Pet          string `json:"pet"`
	Plan         string `json:"plan"`
	FirstDeposit int    `json:"firstDeposit"`
}

func (b securityAnswersBody) toDomain() domain.SecurityAnswers {
	return domain.SecurityAnswers{
		School:       b.School,
		Pet:          b.Pet,
		Plan:         b.Plan,
		FirstDeposit: b.FirstDeposit,
	}
}

// Регистрация нового пользователя
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username     string              `json:"username"`
		Email        string              `json:"email" binding:"required,email"`
		Phone        string              `json:"phone"`
		Password     string              `json:"password" binding:"required,min=6"`
		ReferralCode string              `json:"referralCode"`
		Security     securityAnswersBody `json:"securityQuestions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
		IP:           c.ClientIP(),
		Security:     req.Security.toDomain(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrSecurityRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "all four security answers are required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	h.setSession(c, user.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":      "registration successful",
		"referralCode": user.ReferralCode,
		"user":         userResponse(user),
	})
}

// Вход по email и паролю
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.setSession(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "user": userResponse(user)})
}

// Выход: сброс сессионной cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Список вопросов для восстановления пароля
func (h *Handler) ForgotPasswordSecurity(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	questions, err := h.Auth.SecurityQuestions(req.Email)
	if err != nil {
		// не раскрываем, существует ли аккаунт
		c.JSON(http.StatusOK, gin.H{"questions": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// Смена пароля по секретным вопросам
func (h *Handler) ResetPasswordSecurity(c *gin.Context) {
	var req struct {
		Email       string              `json:"email" binding:"required"`
		NewPassword string              `json:"newPassword" binding:"required,min=6"`
		Answers     securityAnswersBody `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.Auth.ResetPasswordBySecurity(c.Request.Context(), req.Email, req.NewPassword, req.Answers.toDomain())
	if err != nil {
		if errors.Is(err, service.ErrSecurityCheck) || errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "security answers do not match"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) setSession(c *gin.Context, userID string) {
	token, err := middleware.IssueToken(userID)
	if err != nil {
		return
	}
	// 7 суток, как у токена
	c.SetCookie(middleware.SessionCookie, token, 7*24*3600, "/", "", false, true)
}
