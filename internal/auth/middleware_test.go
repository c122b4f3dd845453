package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func middlewareContext(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestRequiredWithoutTokenEnvelope(t *testing.T) {
	mw := NewMiddleware(NewTokenManager("test-secret", 1), nil)

	c, rec := middlewareContext(t, "")
	err := mw.Required(func(echo.Context) error {
		t.Fatal("handler must not be called without a token")
		return nil
	})(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Конверт ошибки совпадает с конвертом обработчиков по всем трем ключам
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{
		"success": false,
		"message": "authentication required",
		"error":   "UNAUTHENTICATED",
	}, body)
}

func TestRequiredResolvesPrincipal(t *testing.T) {
	tokens := NewTokenManager("test-secret", 1)
	mw := NewMiddleware(tokens, []int64{42})

	token, err := tokens.CreateToken(42, "alice")
	require.NoError(t, err)

	c, _ := middlewareContext(t, token)
	called := false
	err = mw.Required(func(c echo.Context) error {
		called = true
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		assert.Equal(t, int64(42), caller.UserID)
		assert.Equal(t, "alice", caller.Username)
		assert.True(t, caller.IsAdmin)
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequiredRejectsBadToken(t *testing.T) {
	mw := NewMiddleware(NewTokenManager("test-secret", 1), nil)

	c, rec := middlewareContext(t, "not.a.token")
	err := mw.Required(func(echo.Context) error {
		t.Fatal("handler must not be called with a bad token")
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalWithoutToken(t *testing.T) {
	mw := NewMiddleware(NewTokenManager("test-secret", 1), nil)

	c, _ := middlewareContext(t, "")
	err := mw.Optional(func(c echo.Context) error {
		_, ok := CallerFrom(c)
		assert.False(t, ok)
		return nil
	})(c)
	require.NoError(t, err)
}

func TestOptionalWithToken(t *testing.T) {
	tokens := NewTokenManager("test-secret", 1)
	mw := NewMiddleware(tokens, nil)

	token, err := tokens.CreateToken(7, "bob")
	require.NoError(t, err)

	c, _ := middlewareContext(t, token)
	err = mw.Optional(func(c echo.Context) error {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		assert.Equal(t, int64(7), caller.UserID)
		assert.False(t, caller.IsAdmin)
		return nil
	})(c)
	require.NoError(t, err)
}
