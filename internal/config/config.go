// Package config provides application configuration.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// DBPath is the on-device SQLite file. Empty means the default XDG path.
	DBPath string

	// RemoteDSN is the row store connection string. Empty disables remote
	// sync; signed-in learners are then kept on the device.
	RemoteDSN    string
	RemoteDriver string // "postgres" or "sqlite"

	Port          string
	SessionKey    string
	SecureCookies bool

	// EphemeralSessionKey is set when SessionKey was generated for this
	// process. Cookies signed with it do not survive a restart.
	EphemeralSessionKey bool

	LogLevel string
	LogFile  string // optional rotating JSON log

	ReminderInterval time.Duration

	TTSAPIKey string
	TTSRate   float64 // requests per second
}

// DefaultConfig returns the built-in defaults. The session key is random
// per call.
func DefaultConfig() *Config {
	return &Config{
		RemoteDriver:        "postgres",
		Port:                "8080",
		SessionKey:          randomSessionKey(),
		EphemeralSessionKey: true,
		LogLevel:            "info",
		ReminderInterval:    time.Hour,
		TTSRate:             2,
	}
}

func randomSessionKey() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}

// LoadDotEnv reads .env files into the environment. Missing files are fine.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv reads configuration from environment variables on top of the
// defaults.
func FromEnv() (*Config, error) {
	d := DefaultConfig()
	cfg := &Config{
		DBPath:           getEnv("STUDYGUIDE_DB", d.DBPath),
		RemoteDSN:        getEnv("DATABASE_URL", d.RemoteDSN),
		RemoteDriver:     getEnv("STUDYGUIDE_REMOTE_DRIVER", d.RemoteDriver),
		Port:             getEnv("PORT", d.Port),
		SessionKey:       d.SessionKey,
		SecureCookies:    getEnvBool("STUDYGUIDE_SECURE_COOKIES", d.SecureCookies),
		LogLevel:         getEnv("STUDYGUIDE_LOG_LEVEL", d.LogLevel),
		LogFile:          getEnv("STUDYGUIDE_LOG_FILE", d.LogFile),
		ReminderInterval: getEnvDuration("STUDYGUIDE_REMINDER_INTERVAL", d.ReminderInterval),
		TTSAPIKey:        getEnv("STUDYGUIDE_TTS_API_KEY", os.Getenv("GEMINI_API_KEY")),
		TTSRate:          getEnvFloat("STUDYGUIDE_TTS_RPS", d.TTSRate),
	}
	if key, ok := os.LookupEnv("STUDYGUIDE_SESSION_KEY"); ok && key != "" {
		cfg.SessionKey = key
	} else {
		cfg.EphemeralSessionKey = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RemoteEnabled reports whether a row store is configured.
func (c *Config) RemoteEnabled() bool {
	return c.RemoteDSN != ""
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.RemoteDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("STUDYGUIDE_REMOTE_DRIVER must be postgres or sqlite, got %q", c.RemoteDriver)
	}
	if len(c.SessionKey) < 32 {
		return fmt.Errorf("STUDYGUIDE_SESSION_KEY must be at least 32 bytes")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.ReminderInterval < time.Minute {
		return fmt.Errorf("STUDYGUIDE_REMINDER_INTERVAL must be at least 1m")
	}
	if c.TTSRate <= 0 {
		return fmt.Errorf("STUDYGUIDE_TTS_RPS must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
