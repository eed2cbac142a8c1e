package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
)

var allKeys = []string{
	"ATTEND_ENV", "ATTEND_API_URL", "ATTEND_TENANT", "ATTEND_HTTP_TIMEOUT",
	"ATTEND_LOCATION_SOURCE", "ATTEND_LOCATION_LAT", "ATTEND_LOCATION_LNG",
	"ATTEND_LOCATION_URL", "ATTEND_LOCATION_TIMEOUT", "ATTEND_SESSION_BACKEND",
	"ATTEND_SESSION_FILE", "ATTEND_SESSION_KEY", "ATTEND_JOURNAL_PATH",
	"ATTEND_LOG_FILE", "ATTEND_LOG_LEVEL", "ATTEND_LOG_FORMAT", "ATTEND_LOCALE",
}

// clearEnv blanks every config variable for the test. Empty values fall
// back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, models.EnvProduction, cfg.Env)
	assert.Equal(t, models.EnvProduction.BaseURL(), cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "fixed", cfg.Location.Source)
	assert.Equal(t, location.DefaultTimeout, cfg.Location.Timeout)
	assert.Nil(t, cfg.Location.FixedPoint())
	assert.Equal(t, "keychain", cfg.Session.Backend)
	assert.Equal(t, "journal.db", filepath.Base(cfg.Journal.Path))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ATTEND_ENV", "staging")
	t.Setenv("ATTEND_TENANT", "acme")
	t.Setenv("ATTEND_LOCATION_LAT", "21.0285")
	t.Setenv("ATTEND_LOCATION_LNG", "105.8542")
	t.Setenv("ATTEND_LOCATION_TIMEOUT", "2m")
	t.Setenv("ATTEND_SESSION_BACKEND", "file")
	t.Setenv("ATTEND_SESSION_KEY", "000102030405060708090a0b0c0d0e0f")
	t.Setenv("ATTEND_LOG_LEVEL", "DEBUG")
	t.Setenv("ATTEND_LOCALE", "vi")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, models.EnvStaging.BaseURL(), cfg.API.BaseURL)
	assert.Equal(t, "acme", cfg.API.Tenant)
	assert.Equal(t, location.MaxTimeout, cfg.Location.Timeout, "timeout is clamped")
	require.NotNil(t, cfg.Location.FixedPoint())
	assert.Equal(t, models.NewGeoPoint(21.0285, 105.8542), *cfg.Location.FixedPoint())
	assert.Len(t, cfg.Session.Key, 16)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "vi", cfg.Locale)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even empty ones
	for _, k := range []string{"ATTEND_API_URL", "ATTEND_LOCATION_SOURCE", "ATTEND_LOCATION_URL"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{"ATTEND_API_URL", "ATTEND_LOCATION_SOURCE", "ATTEND_LOCATION_URL"} {
			os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"ATTEND_API_URL=http://localhost:9090/api\n"+
			"ATTEND_LOCATION_SOURCE=http\n"+
			"ATTEND_LOCATION_URL=http://localhost:9091/position\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090/api", cfg.API.BaseURL)
	assert.Equal(t, "http", cfg.Location.Source)
	assert.Equal(t, "http://localhost:9091/position", cfg.Location.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown env", map[string]string{"ATTEND_ENV": "qa"}},
		{"bad api url", map[string]string{"ATTEND_API_URL": "not a url"}},
		{"unknown location source", map[string]string{"ATTEND_LOCATION_SOURCE": "gps"}},
		{"http source without url", map[string]string{"ATTEND_LOCATION_SOURCE": "http"}},
		{"latitude out of range", map[string]string{"ATTEND_LOCATION_LAT": "91", "ATTEND_LOCATION_LNG": "0"}},
		{"latitude without longitude", map[string]string{"ATTEND_LOCATION_LAT": "21"}},
		{"unknown session backend", map[string]string{"ATTEND_SESSION_BACKEND": "vault"}},
		{"file backend without key", map[string]string{"ATTEND_SESSION_BACKEND": "file"}},
		{"key not hex", map[string]string{"ATTEND_SESSION_KEY": "zz"}},
		{"short key", map[string]string{"ATTEND_SESSION_BACKEND": "file", "ATTEND_SESSION_KEY": "0001"}},
		{"unknown log format", map[string]string{"ATTEND_LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}
