package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims описывает полезную нагрузку токена сессии
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"un"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет токены сессий (HS256)
type TokenManager struct {
	secretKey string
	tokenTTL  time.Duration
}

func NewTokenManager(secretKey string, ttlHours int) *TokenManager {
	return &TokenManager{
		secretKey: secretKey,
		tokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// CreateToken выпускает подписанный токен для пользователя
func (tm *TokenManager) CreateToken(userID int64, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CheckToken проверяет подпись и срок действия токена, возвращает его содержимое
func (tm *TokenManager) CheckToken(requestToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(requestToken, claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
