package api

import (
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/qorix-chat/internal/api/middleware"
	"github.com/Rrens/qorix-chat/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(a *app.App) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(a.Chat)
	chatHandler := handler.NewChatHandler(a.Chat, cfg.Uploads.MaxBytes)
	settingsHandler := handler.NewSettingsHandler(a.Preferences)
	attachmentHandler := handler.NewAttachmentHandler(a.Blobs)

	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(a.Limiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(a.KV))

		// Attachment handles end up in <img src>, so they carry no token; blob names are random
		r.Get("/attachments/{sessionID}/{blob}", attachmentHandler.Serve)

		r.Group(func(r chi.Router) {
			if a.Tokens != nil {
				r.Use(customMiddleware.NewAuthMiddleware(a.Tokens).Authenticate)
			} else {
				log.Warn().Msg("auth.jwt_secret is empty, API is unauthenticated")
			}

			r.Get("/providers", handler.ListProviders(a.Providers))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.Put("/api-key", settingsHandler.SetAPIKey)
				r.Put("/theme", settingsHandler.SetTheme)
			})

			r.With(rateLimitMiddleware.Limit).Post("/messages", chatHandler.Send)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Delete("/", sessionHandler.Delete)
					r.Post("/select", sessionHandler.Select)

					r.With(rateLimitMiddleware.Limit).Post("/messages", chatHandler.Send)
					r.Patch("/messages/{messageID}", sessionHandler.EditMessage)
				})
			})
		})
	})

	return r
}
