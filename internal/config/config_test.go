package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MAILTM_BASE_URL",
	"MAILTM_TIMEOUT",
	"MAILTM_USER_AGENT",
	"MAILTM_ADDRESS",
	"MAILTM_PASSWORD",
	"MAILTM_TOKEN",
	"MAILTM_LOG_LEVEL",
	"MAILTM_LOG_DEVELOPMENT",
	"MAILTM_LOG_FILE",
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		// Setenv registers restoration of the original value.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "https://api.mail.tm", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "mailtm-cli", cfg.UserAgent)
	assert.Empty(t, cfg.Address)
	assert.Empty(t, cfg.Token)
	assert.False(t, cfg.HasCredentials())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, 10, cfg.Log.MaxSize)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAILTM_BASE_URL", "http://localhost:9000")
	t.Setenv("MAILTM_TIMEOUT", "5s")
	t.Setenv("MAILTM_ADDRESS", " bob@mailtm.test ")
	t.Setenv("MAILTM_PASSWORD", "hunter22")
	t.Setenv("MAILTM_LOG_LEVEL", "debug")
	t.Setenv("MAILTM_LOG_DEVELOPMENT", "true")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "bob@mailtm.test", cfg.Address)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "MAILTM_TOKEN=from-file\nMAILTM_ADDRESS=file@mailtm.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// The process environment wins over the file.
	t.Setenv("MAILTM_ADDRESS", "env@mailtm.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, "env@mailtm.test", cfg.Address)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAILTM_BASE_URL", "not a url"},
		{"MAILTM_TIMEOUT", "soon"},
		{"MAILTM_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}
