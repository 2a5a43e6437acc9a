package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/rs/zerolog/log"
)

// RateLimiter decides whether a request for key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting per token subject, or per client address when
// authentication is disabled
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := GetSubject(r.Context())
		if !ok {
			key = clientIP(r)
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), key)
		if err != nil {
			// If rate limiter fails, allow the request but log the error
			log.Error().Err(err).Str("key", key).Msg("rate limiter failed")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
