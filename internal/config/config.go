// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/diewo77/kinz/internal/logger"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	Remote RemoteConfig
	Events EventsConfig
	Log    logger.LogConfig
	App    AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string
	ReadTimeout   int // seconds
	WriteTimeout  int // seconds
	IdleTimeout   int // seconds
	SessionSecret string
}

// CacheConfig points at the local sqlite file backing the persistent cache.
type CacheConfig struct {
	Path string
}

// RemoteConfig holds PostgreSQL connection settings for the remote mirror.
// When Enabled is false the application runs in local-only mode.
type RemoteConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EventsConfig configures the optional NATS change feed.
type EventsConfig struct {
	NATSURL string
	Subject string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	DBDebug    bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d RemoteConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d RemoteConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	dev := getEnvBool("DEV", true)
	logFormat := "json"
	if dev {
		logFormat = "console"
	}
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			ReadTimeout:   getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			SessionSecret: getEnv("SESSION_SECRET", ""),
		},
		Cache: CacheConfig{
			Path: getEnv("CACHE_PATH", "kinz.db"),
		},
		Remote: RemoteConfig{
			Enabled:  getEnvBool("REMOTE_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "kinz"),
			Password: getEnv("DB_PASSWORD", "kinz123"),
			DBName:   getEnv("DB_NAME", "kinz"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Events: EventsConfig{
			NATSURL: getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "kinz.changes"),
		},
		Log: logger.LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", logFormat),
			TimeFormat: getEnv("LOG_TIME_FORMAT", "15:04:05"),
		},
		App: AppConfig{
			Dev:        dev,
			Migrations: getEnvBool("MIGRATIONS", false),
			DBDebug:    getEnvBool("DB_DEBUG", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
