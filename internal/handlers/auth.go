package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

// Register регистрирует нового пользователя и сразу выдает токен сессии
func (h *Handler) Register(c echo.Context) error {
	h.logger.Info("Register: начало обработки запроса")

	var req struct {
		Email    string   `json:"email"`
		Username string   `json:"username"`
		Password string   `json:"password"`
		Bio      string   `json:"bio"`
		Skills   []string `json:"skills"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Register: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		h.logger.Warn("Register: некорректные данные регистрации", zap.String("email", req.Email))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "email, username and a password of at least 8 characters are required")
	}

	passHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Register: ошибка хэширования пароля", zap.Error(err))
		return respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}

	user, err := h.store.CreateUser(c.Request().Context(), req.Email, req.Username, passHash, req.Bio, req.Skills)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			h.logger.Warn("Register: email или username уже заняты", zap.String("email", req.Email))
			return respondError(c, http.StatusConflict, ErrCodeConflict, "email or username already taken")
		}
		return h.handleError(c, "Register", err, zap.String("email", req.Email))
	}

	token, err := h.tokens.CreateToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Register: ошибка выпуска токена", zap.Error(err), zap.Int64("user_id", user.ID))
		return respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}

	h.logger.Info("Register: пользователь зарегистрирован", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return respond(c, http.StatusCreated, "registered", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Login проверяет учетные данные и выдает токен сессии
func (h *Handler) Login(c echo.Context) error {
	h.logger.Info("Login: начало обработки запроса")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Login: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.store.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn("Login: пользователь не найден", zap.String("email", req.Email))
			return respondError(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "invalid email or password")
		}
		return h.handleError(c, "Login", err, zap.String("email", req.Email))
	}

	if !auth.CheckPassword(user.PassHash, req.Password) {
		h.logger.Warn("Login: неверный пароль", zap.String("email", req.Email))
		return respondError(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "invalid email or password")
	}

	token, err := h.tokens.CreateToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Login: ошибка выпуска токена", zap.Error(err), zap.Int64("user_id", user.ID))
		return respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}

	user.PassHash = ""

	h.logger.Info("Login: успешный вход", zap.Int64("user_id", user.ID))
	return respond(c, http.StatusOK, "logged in", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetProfile возвращает профиль текущего пользователя
func (h *Handler) GetProfile(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	user, err := h.store.GetUser(c.Request().Context(), caller.UserID)
	if err != nil {
		return h.handleError(c, "GetProfile", err, zap.Int64("user_id", caller.UserID))
	}

	return respond(c, http.StatusOK, "profile", map[string]interface{}{"user": user})
}

// UpdateProfile обновляет профиль текущего пользователя
func (h *Handler) UpdateProfile(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)
	h.logger.Info("UpdateProfile: начало обработки запроса", zap.Int64("user_id", caller.UserID))

	var req struct {
		Bio       string   `json:"bio"`
		Skills    []string `json:"skills"`
		AvatarURL string   `json:"avatar_url"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("UpdateProfile: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	user, err := h.store.UpdateUserProfile(c.Request().Context(), caller.UserID, req.Bio, req.Skills, req.AvatarURL)
	if err != nil {
		return h.handleError(c, "UpdateProfile", err, zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("UpdateProfile: профиль обновлен", zap.Int64("user_id", caller.UserID))
	return respond(c, http.StatusOK, "profile updated", map[string]interface{}{"user": user})
}
