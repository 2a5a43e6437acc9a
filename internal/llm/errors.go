package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// User-facing replies for failures the client absorbs
const (
	MsgMissingCredential = "Please set your API key in settings."
	MsgQuotaExceeded     = "The AI service quota or rate limit has been reached. Please wait a moment and try again."
	MsgAuthFailed        = "Authentication with the AI service failed. Please check your API key in settings."
	MsgRequestFailed     = "The AI service could not complete the request. Please try again."
	msgConnectionPrefix  = "Connection error: "
)

// APIError is a non-success answer from the provider
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// ErrorClass groups provider failures by the reply they produce
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassQuota
	ClassAuth
)

func (c ErrorClass) String() string {
	switch c {
	case ClassQuota:
		return "quota"
	case ClassAuth:
		return "auth"
	default:
		return "other"
	}
}

var (
	quotaMarkers = []string{"quota", "rate limit", "rate-limit", "too many requests", "credit"}
	authMarkers  = []string{"unauthorized", "authentication", "api key", "api_key", "invalid key", "no auth", "permission denied"}
)

func isQuotaStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusPaymentRequired
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// ClassifyError decides which reply an APIError maps to. The HTTP status and
// the code in the error body are both consulted; either may flag quota or auth.
func ClassifyError(e *APIError) ErrorClass {
	switch {
	case isQuotaStatus(e.StatusCode) || isQuotaStatus(e.Code):
		return ClassQuota
	case isAuthStatus(e.StatusCode) || isAuthStatus(e.Code):
		return ClassAuth
	}

	msg := strings.ToLower(e.Message)
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return ClassQuota
		}
	}
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return ClassAuth
		}
	}
	return ClassOther
}

// ReplyFor turns a provider or transport error into display text
func ReplyFor(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch ClassifyError(apiErr) {
		case ClassQuota:
			return MsgQuotaExceeded
		case ClassAuth:
			return MsgAuthFailed
		default:
			return MsgRequestFailed
		}
	}
	return msgConnectionPrefix + err.Error()
}
