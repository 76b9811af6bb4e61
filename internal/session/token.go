package session

import (
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken 会话令牌无效
var ErrInvalidToken = errors.New("session: invalid token")

// Claims 会话 JWT 声明
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens 会话令牌签发与解析
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens 创建令牌工具
func NewTokens(secret string, expireHours int) *Tokens {
	if expireHours <= 0 {
		expireHours = 720
	}
	return &Tokens{secret: []byte(secret), ttl: time.Duration(expireHours) * time.Hour}
}

// NewSessionID 生成新的会话 ID
func NewSessionID() string {
	return uuid.NewString()
}

// Issue 为会话签发令牌
func (t *Tokens) Issue(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.SessionTokenIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 解析令牌并返回会话 ID
func (t *Tokens) Parse(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.SessionTokenIssuer),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
