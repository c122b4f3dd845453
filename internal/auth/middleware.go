package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const principalContextKey = "auth.principal"

// Principal представляет аутентифицированного пользователя запроса
type Principal struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// Middleware извлекает пользователя из заголовка Authorization
type Middleware struct {
	tokens   *TokenManager
	adminIDs map[int64]bool
}

func NewMiddleware(tokens *TokenManager, adminUserIDs []int64) *Middleware {
	admins := make(map[int64]bool, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = true
	}
	return &Middleware{tokens: tokens, adminIDs: admins}
}

// Required отклоняет запрос без валидного bearer-токена
func (m *Middleware) Required(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, ok := m.resolve(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "authentication required",
				"error":   "UNAUTHENTICATED",
			})
		}
		c.Set(principalContextKey, principal)
		return next(c)
	}
}

// Optional извлекает пользователя, если токен передан, но не требует его.
// Нужен для читающих ручек, которые персонализируют ответ для вошедшего пользователя.
func (m *Middleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if principal, ok := m.resolve(c); ok {
			c.Set(principalContextKey, principal)
		}
		return next(c)
	}
}

func (m *Middleware) resolve(c echo.Context) (*Principal, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}

	claims, err := m.tokens.CheckToken(token)
	if err != nil {
		return nil, false
	}

	return &Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		IsAdmin:  m.adminIDs[claims.UserID],
	}, true
}

// CallerFrom возвращает пользователя запроса, если он аутентифицирован
func CallerFrom(c echo.Context) (*Principal, bool) {
	principal, ok := c.Get(principalContextKey).(*Principal)
	return principal, ok && principal != nil
}
