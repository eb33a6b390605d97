package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	defaultJWTSecret = "tictactoe-dev-secret"
)

type Config struct {
	Port           string
	LogLevel       slog.Level
	LogFormat      string // text or json
	StoreBackend   string
	RedisAddr      string
	SQLitePath     string
	SessionTTL     time.Duration
	BotDelay       time.Duration
	CleanupEvery   time.Duration
	JWTSecret      string
	OTLPEndpoint   string
	AllowedOrigins []string // empty allows any origin
}

// LoadConfig reads the environment, after loading a .env file when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:           GetEnv("PORT", "8080"),
		LogLevel:       ParseLevel(GetEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(GetEnv("LOG_FORMAT", "text")),
		StoreBackend:   strings.ToLower(GetEnv("STORE_BACKEND", BackendMemory)),
		RedisAddr:      GetEnv("REDIS_CONNSTRING", "localhost:6379"),
		SQLitePath:     GetEnv("SQLITE_PATH", "./sessions.db"),
		SessionTTL:     time.Duration(GetEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		BotDelay:       time.Duration(GetEnvAsInt("BOT_DELAY_MS", 500)) * time.Millisecond,
		CleanupEvery:   time.Duration(GetEnvAsInt("CLEANUP_INTERVAL_SECONDS", 60)) * time.Second,
		JWTSecret:      GetEnv("JWT_SECRET", defaultJWTSecret),
		OTLPEndpoint:   GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		AllowedOrigins: GetEnvAsList("ALLOWED_ORIGINS"),
	}

	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET not set, using the development secret")
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		slog.Warn("Unknown STORE_BACKEND, using memory", "store.backend", cfg.StoreBackend)
		cfg.StoreBackend = BackendMemory
	}

	slog.Info("Config loaded",
		"port", cfg.Port,
		"store.backend", cfg.StoreBackend,
		"session.ttl", cfg.SessionTTL,
		"bot.delay", cfg.BotDelay,
		"otel.enabled", cfg.OTLPEndpoint != "",
	)
	return cfg
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		slog.Warn("Invalid integer value, using default", "env.key", key, "env.value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsList splits a comma separated variable, dropping blanks.
func GetEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
