// Package config loads the mailtm command configuration from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mailtm/client-go/internal/api"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "MAILTM"

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string
	Development bool
	File        string
	MaxSize     int // megabytes
	MaxBackups  int
	MaxAge      int // days
	Compress    bool
}

// Config is the command configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Credentials of the account commands act on.
	Address  string
	Password string
	Token    string

	Log LogConfig
}

// Load reads configuration with the following precedence, highest first:
// process environment, the given .env files (default ".env"), defaults.
// Missing .env files are ignored.
//
// Variables are named MAILTM_<KEY>, for example MAILTM_BASE_URL or
// MAILTM_LOG_LEVEL.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv.Load never overrides variables that are already set.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", api.DefaultBaseURL)
	v.SetDefault("timeout", "30s")
	v.SetDefault("user_agent", "mailtm-cli")
	v.SetDefault("address", "")
	v.SetDefault("password", "")
	v.SetDefault("token", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	baseURL := v.GetString("base_url")
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s_BASE_URL %q", EnvPrefix, baseURL)
	}

	timeout, err := time.ParseDuration(v.GetString("timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_TIMEOUT: %w", EnvPrefix, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("invalid %s_TIMEOUT: must not be negative", EnvPrefix)
	}

	return &Config{
		BaseURL:   baseURL,
		Timeout:   timeout,
		UserAgent: v.GetString("user_agent"),
		Address:   strings.TrimSpace(v.GetString("address")),
		Password:  v.GetString("password"),
		Token:     strings.TrimSpace(v.GetString("token")),
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
			MaxSize:     v.GetInt("log.max_size"),
			MaxBackups:  v.GetInt("log.max_backups"),
			MaxAge:      v.GetInt("log.max_age"),
			Compress:    v.GetBool("log.compress"),
		},
	}, nil
}

// HasCredentials reports whether an address and password are configured.
func (c *Config) HasCredentials() bool {
	return c.Address != "" && c.Password != ""
}
