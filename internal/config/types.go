package config

import "time"

// Config holds all server configuration loaded from the environment.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// comma-separated list of origins allowed for CORS and websocket upgrades
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// how often the cleanup service sweeps the session store
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"10m"`

	// sessions older than this are evicted regardless of participants
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"1h"`

	// sessions with no participants older than this are evicted
	EmptySessionTTL time.Duration `envconfig:"EMPTY_SESSION_TTL" default:"5m"`

	// per-IP rate limit for session creation, limiter format (e.g. "30-M")
	CreateSessionRate string `envconfig:"CREATE_SESSION_RATE" default:"30-M"`
}
