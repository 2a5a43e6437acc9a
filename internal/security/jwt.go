package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "qorix-chat"

// Claims represents API token claims
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager issues and validates bearer tokens for the HTTP API
type JWTManager struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, tokenTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// GenerateToken generates an access token for subject
func (m *JWTManager) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a token and returns its claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// TokenTTL returns the token lifetime
func (m *JWTManager) TokenTTL() time.Duration {
	return m.tokenTTL
}
