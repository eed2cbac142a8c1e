// Package config loads client settings from the environment and an
// optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/validate"
)

// appDir is the directory under the user config dir holding local state.
const appDir = "attendcli"

type Config struct {
	Env      models.Environment `validate:"oneof=production staging development"`
	API      APIConfig
	Location LocationConfig
	Session  SessionConfig
	Journal  JournalConfig
	Log      LogConfig
	Locale   string `validate:"required"`
}

type APIConfig struct {
	BaseURL string        `validate:"required,url"`
	Tenant  string
	Timeout time.Duration `validate:"gt=0"`
}

type LocationConfig struct {
	Source    string        `validate:"oneof=fixed http"`
	Latitude  *float64      `validate:"omitempty,lat"`
	Longitude *float64      `validate:"omitempty,lng"`
	URL       string        `validate:"omitempty,url"`
	Timeout   time.Duration
}

type SessionConfig struct {
	Backend string `validate:"oneof=keychain file memory"`
	File    string `validate:"required_if=Backend file"`
	Key     []byte `json:"-"`
}

type JournalConfig struct {
	Path string `validate:"required"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=console json"`
	File   string
}

// Load reads the configuration. envFile may name a .env file; an empty
// name tries ./.env. A missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	dir := stateDir()
	env := models.Environment(getEnv("ATTEND_ENV", string(models.EnvProduction)))

	cfg := &Config{
		Env: env,
		API: APIConfig{
			BaseURL: getEnv("ATTEND_API_URL", env.BaseURL()),
			Tenant:  getEnv("ATTEND_TENANT", ""),
			Timeout: getEnvDuration("ATTEND_HTTP_TIMEOUT", 30*time.Second),
		},
		Location: LocationConfig{
			Source:    getEnv("ATTEND_LOCATION_SOURCE", "fixed"),
			Latitude:  getEnvFloat("ATTEND_LOCATION_LAT"),
			Longitude: getEnvFloat("ATTEND_LOCATION_LNG"),
			URL:       getEnv("ATTEND_LOCATION_URL", ""),
			Timeout:   location.ClampTimeout(getEnvDuration("ATTEND_LOCATION_TIMEOUT", location.DefaultTimeout)),
		},
		Session: SessionConfig{
			Backend: getEnv("ATTEND_SESSION_BACKEND", "keychain"),
			File:    getEnv("ATTEND_SESSION_FILE", filepath.Join(dir, "session.bin")),
		},
		Journal: JournalConfig{
			Path: getEnv("ATTEND_JOURNAL_PATH", filepath.Join(dir, "journal.db")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("ATTEND_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("ATTEND_LOG_FORMAT", "console")),
			File:   getEnv("ATTEND_LOG_FILE", filepath.Join(dir, "attendcli.log")),
		},
		Locale: getEnv("ATTEND_LOCALE", "en"),
	}

	if raw := os.Getenv("ATTEND_SESSION_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("ATTEND_SESSION_KEY must be hex: %w", err)
		}
		cfg.Session.Key = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Location.Source == "http" && c.Location.URL == "" {
		return errors.New("ATTEND_LOCATION_URL is required when ATTEND_LOCATION_SOURCE=http")
	}

	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return errors.New("ATTEND_LOCATION_LAT and ATTEND_LOCATION_LNG must be set together")
	}

	if c.Session.Backend == "file" {
		if n := len(c.Session.Key); n != 16 && n != 32 {
			return fmt.Errorf("ATTEND_SESSION_KEY must be 16 or 32 bytes of hex for the file backend, got %d bytes", n)
		}
	}

	return nil
}

// FixedPoint returns the configured fixed position, if any.
func (c LocationConfig) FixedPoint() *models.GeoPoint {
	if c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	p := models.NewGeoPoint(*c.Latitude, *c.Longitude)
	return &p
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir)
	}
	return filepath.Join(os.TempDir(), appDir)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvFloat(key string) *float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}
