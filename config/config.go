/*
Package config loads server configuration from the environment.

A .env file in the working directory is read first when present, then
plain environment variables. Every setting has a workable default so a
bare `go run ./cmd/server` starts a local instance.

SETTINGS:
  PORT             HTTP listen port              (default 8080)
  DB_PATH          SQLite database file          (default data/crm210.db)
  CORS_ORIGINS     comma-separated allowed origins
  LOG_LEVEL        logrus level name             (default info)
  EXPIRY_SCHEDULE  cron expression for the negative-income expiry job
*/
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the server settings.
type Config struct {
	Port           string
	DBPath         string
	CORSOrigins    []string
	LogLevel       logrus.Level
	ExpirySchedule string
}

// Load reads the configuration from .env and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment only")
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "data/crm210.db"),
		CORSOrigins:    splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:       level,
		ExpirySchedule: getEnv("EXPIRY_SCHEDULE", "0 2 * * *"),
	}
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
