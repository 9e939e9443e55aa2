// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the server.
type Config struct {
	Addr        string // listen address, e.g. ":8080"
	DBPath      string // path to the sqlite database file
	Env         string // "development" or "production"
	ResendKey   string // Resend API key; empty disables email delivery
	EmailFrom   string // From header for outgoing mail
	EmailReply  string // Reply-To header for outgoing mail
	CORSOrigin  string // allowed browser origin for the JSON API
	SlowQueryMS int    // slow query log threshold in milliseconds
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("config_event", "event", "dotenv_loaded")
	}

	return Config{
		Addr:        envOrDefault("TRAINDESK_ADDR", ":8080"),
		DBPath:      envOrDefault("TRAINDESK_DB", "traindesk.db"),
		Env:         envOrDefault("TRAINDESK_ENV", "development"),
		ResendKey:   os.Getenv("TRAINDESK_RESEND_KEY"),
		EmailFrom:   envOrDefault("TRAINDESK_RESEND_FROM", "TrainDesk <noreply@traindesk.example>"),
		EmailReply:  envOrDefault("TRAINDESK_REPLY_TO", "training@traindesk.example"),
		CORSOrigin:  envOrDefault("TRAINDESK_CORS_ORIGIN", "http://localhost:5173"),
		SlowQueryMS: envIntOrDefault("TRAINDESK_SLOW_QUERY_MS", 100),
	}
}

// IsProduction reports whether the server is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("config_event", "event", "bad_int_env", "key", key, "value", v)
		return fallback
	}
	return n
}
