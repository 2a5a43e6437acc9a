// Package app wires configuration, storage, providers and services together.
// Both the HTTP server and chatctl are built on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/Rrens/qorix-chat/internal/llm/gemini"
	"github.com/Rrens/qorix-chat/internal/llm/openrouter"
	"github.com/Rrens/qorix-chat/internal/repository/filesystem"
	"github.com/Rrens/qorix-chat/internal/repository/memory"
	"github.com/Rrens/qorix-chat/internal/repository/migrations"
	"github.com/Rrens/qorix-chat/internal/repository/mongo"
	"github.com/Rrens/qorix-chat/internal/repository/mysql"
	"github.com/Rrens/qorix-chat/internal/repository/postgres"
	"github.com/Rrens/qorix-chat/internal/repository/redis"
	"github.com/Rrens/qorix-chat/internal/repository/sqlite"
	"github.com/Rrens/qorix-chat/internal/security"
	"github.com/Rrens/qorix-chat/internal/service"
	"github.com/rs/zerolog/log"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// RateLimiter limits requests per key
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// App holds the long-lived components of the process
type App struct {
	Config      *config.Config
	KV          domain.KVStore
	Blobs       *filesystem.BlobStore
	Providers   *llm.Router
	Client      *llm.Client
	Sessions    *service.SessionStore
	Chat        *service.ChatService
	Preferences *service.PreferencesService
	Limiter     RateLimiter
	// Tokens is nil when API authentication is disabled
	Tokens *security.JWTManager
}

// Build opens storage and constructs every service
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Storage.AutoMigrate {
		if err := Migrate(cfg, false); err != nil {
			return nil, err
		}
	}

	kv, redisClient, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := filesystem.NewBlobStore(cfg.Uploads.Dir)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	var encryptor *security.Encryptor
	if cfg.Security.EncryptionSecret != "" {
		encryptor, err = security.NewEncryptorFromSecret(cfg.Security.EncryptionSecret)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
	}

	providers := NewProviders(cfg)
	provider, err := providers.GetProvider(cfg.LLM.Provider)
	if err != nil {
		kv.Close()
		return nil, err
	}

	prefs := service.NewPreferencesService(kv, encryptor, provider.APIKey(), provider.Name(), provider.DefaultModel())
	client := llm.NewClient(provider, prefs, llm.Config{
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		SystemPrompt: cfg.LLM.SystemPrompt,
		MaxFileChars: cfg.LLM.MaxFileChars,
	})

	sessions := service.NewSessionStore(ctx, kv)
	chat := service.NewChatService(sessions, client, blobs, service.ChatConfig{
		SystemPrompt:    cfg.LLM.SystemPrompt,
		RevealCodeDelay: cfg.Chat.RevealCodeDelay,
		RevealMaxDelay:  cfg.Chat.RevealMaxDelay,
	})

	var limiter RateLimiter
	if redisClient != nil {
		limiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	} else {
		limiter = memory.NewRateLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	var tokens *security.JWTManager
	if cfg.Auth.JWTSecret != "" {
		tokens = security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	log.Info().
		Str("storage", cfg.Storage.Driver).
		Str("provider", provider.Name()).
		Str("model", client.Model()).
		Bool("auth", tokens != nil).
		Bool("encrypted_credentials", encryptor != nil).
		Msg("application initialized")

	return &App{
		Config:      cfg,
		KV:          kv,
		Blobs:       blobs,
		Providers:   providers,
		Client:      client,
		Sessions:    sessions,
		Chat:        chat,
		Preferences: prefs,
		Limiter:     limiter,
		Tokens:      tokens,
	}, nil
}

// Close releases storage connections
func (a *App) Close() error {
	return a.KV.Close()
}

// NewProviders registers every supported completion provider
func NewProviders(cfg *config.Config) *llm.Router {
	router := llm.NewRouter(cfg.LLM.Provider)
	router.RegisterProvider(openrouter.NewProvider(openrouter.Options{
		APIKey:  cfg.LLM.OpenRouter.APIKey,
		BaseURL: cfg.LLM.OpenRouter.BaseURL,
		Model:   cfg.LLM.Model,
		Referer: cfg.LLM.OpenRouter.Referer,
		Title:   cfg.LLM.OpenRouter.Title,
		Timeout: cfg.LLM.Timeout,
	}))
	router.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	return router
}

// OpenStore opens the configured key/value backend. The Redis client is
// returned as well when the backend is Redis so it can back the rate limiter.
func OpenStore(ctx context.Context, cfg *config.Config) (domain.KVStore, *redis.Client, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		log.Warn().Msg("memory storage selected, conversations are lost on exit")
		return memory.NewKVStore(), nil, nil

	case DriverSQLite, "":
		kv, err := sqlite.Open(ctx, cfg.Storage.SQLite.Path)
		return kv, nil, err

	case DriverRedis:
		client, err := redis.NewClient(ctx, cfg.Storage.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKVStore(client), client, nil

	case DriverPostgres:
		kv, err := postgres.Open(ctx, cfg.Storage.Postgres)
		return kv, nil, err

	case DriverMySQL:
		kv, err := mysql.Open(ctx, cfg.Storage.MySQL)
		return kv, nil, err

	case DriverMongo:
		kv, err := mongo.Open(ctx, cfg.Storage.Mongo)
		return kv, nil, err

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// ErrNoMigrations is returned for backends without a SQL schema
var ErrNoMigrations = errors.New("storage driver has no migrations")

// Migrate applies (or with down, rolls back) the schema of SQL backends.
// Drivers without a schema are a no-op unless down is requested.
func Migrate(cfg *config.Config, down bool) error {
	dialect, url, ok := migrationTarget(cfg)
	if !ok {
		if down {
			return ErrNoMigrations
		}
		return nil
	}

	if down {
		return migrations.Down(dialect, url)
	}
	return migrations.Up(dialect, url)
}

func migrationTarget(cfg *config.Config) (string, string, bool) {
	switch cfg.Storage.Driver {
	case DriverSQLite, "":
		if err := sqlite.EnsureDir(cfg.Storage.SQLite.Path); err != nil {
			log.Warn().Err(err).Msg("failed to create sqlite directory")
		}
		return migrations.SQLite, sqlite.MigrationURL(cfg.Storage.SQLite.Path), true
	case DriverPostgres:
		return migrations.Postgres, cfg.Storage.Postgres.DSN(), true
	case DriverMySQL:
		return migrations.MySQL, mysql.MigrationURL(cfg.Storage.MySQL), true
	default:
		return "", "", false
	}
}
