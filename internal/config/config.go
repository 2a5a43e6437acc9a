package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

// StorageConfig selects and configures the persistent key/value store
type StorageConfig struct {
	Driver      string         `mapstructure:"driver"`
	AutoMigrate bool           `mapstructure:"auto_migrate"`
	SQLite      SQLiteConfig   `mapstructure:"sqlite"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Postgres    DatabaseConfig `mapstructure:"postgres"`
	MySQL       DatabaseConfig `mapstructure:"mysql"`
	Mongo       MongoConfig    `mapstructure:"mongo"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig is shared by the postgres and mysql backends
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the postgres connection URL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// MySQLDSN returns the go-sql-driver/mysql data source name
func (c DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type LLMConfig struct {
	Provider     string           `mapstructure:"provider"`
	Model        string           `mapstructure:"model"`
	Temperature  float64          `mapstructure:"temperature"`
	MaxTokens    int              `mapstructure:"max_tokens"`
	SystemPrompt string           `mapstructure:"system_prompt"`
	MaxFileChars int              `mapstructure:"max_file_chars"`
	Timeout      time.Duration    `mapstructure:"timeout"`
	OpenRouter   OpenRouterConfig `mapstructure:"openrouter"`
	Gemini       GeminiConfig     `mapstructure:"gemini"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ChatConfig tunes the cosmetic reveal window of assistant replies
type ChatConfig struct {
	RevealCodeDelay time.Duration `mapstructure:"reveal_code_delay"`
	RevealMaxDelay  time.Duration `mapstructure:"reveal_max_delay"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SecurityConfig struct {
	EncryptionSecret string          `mapstructure:"encryption_secret"`
	RateLimit        RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// DefaultSystemPrompt is the persona sent as the single system message
const DefaultSystemPrompt = "You are Qorix AI, a helpful assistant. Always identify yourself only as Qorix AI. " +
	"Be concise and friendly in your responses. Never mention that you are made by any other company " +
	"or that you are based on any specific model. You are simply Qorix AI. " +
	"Always format code blocks properly using triple backticks with language specification. " +
	"When analyzing images, describe what you see in detail."

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile bypasses the search path, so a missing file surfaces as a PathError
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "140s")

	// Storage
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("storage.sqlite.path", "./data/qorix.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", "qorix:")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "qorix")
	v.SetDefault("storage.postgres.database", "qorix")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("storage.postgres.max_conns", 10)
	v.SetDefault("storage.postgres.min_conns", 1)
	v.SetDefault("storage.mysql.host", "localhost")
	v.SetDefault("storage.mysql.port", 3306)
	v.SetDefault("storage.mysql.user", "qorix")
	v.SetDefault("storage.mysql.database", "qorix")
	v.SetDefault("storage.mysql.max_conns", 10)
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "qorix")
	v.SetDefault("storage.mongo.collection", "kv")
	v.SetDefault("storage.mongo.timeout", "10s")

	// Uploads
	v.SetDefault("uploads.dir", "./data/uploads")
	v.SetDefault("uploads.max_bytes", 5<<20)

	// LLM
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	v.SetDefault("llm.max_file_chars", 10000)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter.referer", "http://localhost:8080")
	v.SetDefault("llm.openrouter.title", "Qorix AI")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")

	// Chat
	v.SetDefault("chat.reveal_code_delay", "300ms")
	v.SetDefault("chat.reveal_max_delay", "500ms")

	// Auth
	v.SetDefault("auth.token_ttl", "720h")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 20)
	v.SetDefault("security.rate_limit.burst", 5)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.sqlite.path", "SQLITE_PATH")
	v.BindEnv("storage.redis.host", "REDIS_HOST")
	v.BindEnv("storage.redis.password", "REDIS_PASSWORD")
	v.BindEnv("storage.postgres.host", "POSTGRES_HOST")
	v.BindEnv("storage.postgres.password", "POSTGRES_PASSWORD")
	v.BindEnv("storage.mysql.host", "MYSQL_HOST")
	v.BindEnv("storage.mysql.password", "MYSQL_PASSWORD")
	v.BindEnv("storage.mongo.uri", "MONGO_URI")

	// LLM
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.openrouter.api_key", "OPENROUTER_API_KEY", "VITE_OPENROUTER_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")

	// Auth & security
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("security.encryption_secret", "ENCRYPTION_SECRET")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
	v.BindEnv("logging.file", "LOG_FILE")
}
