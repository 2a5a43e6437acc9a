package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/security"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the JWT token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSubject gets the token subject from context
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}
