package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/llm"
)

// Pinger reports storage connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including storage connectivity
func ReadyCheck(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "storage not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListProviders returns the registered completion providers
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
