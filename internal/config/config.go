package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIBaseURL    = "api.base_url"
	KeyAPITimeout    = "api.timeout"
	KeyAPIRetries    = "api.retries"
	KeyAuthToken     = "auth.token"
	KeyAuthTokenFile = "auth.token_file"
	KeyStoragePath   = "storage.path"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	KeyLogFile       = "logging.file"
	KeyTheme         = "ui.theme"
)

// Config is the resolved configuration.
type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Storage StorageConfig
	Logging LoggingConfig
	UI      UIConfig
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// AuthConfig locates the bearer credential.
type AuthConfig struct {
	Token     string
	TokenFile string
}

// StorageConfig locates the preference database.
type StorageConfig struct {
	Path string
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	Theme string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPITimeout, "15s")
	v.SetDefault(KeyAPIRetries, 3)
	v.SetDefault(KeyStoragePath, filepath.Join(DefaultDir(), "preferences.db"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, filepath.Join(DefaultDir(), AppName+".log"))
	v.SetDefault(KeyTheme, "default")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
			Timeout: v.GetDuration(KeyAPITimeout),
			Retries: v.GetInt(KeyAPIRetries),
		},
		Auth: AuthConfig{
			Token:     strings.TrimSpace(v.GetString(KeyAuthToken)),
			TokenFile: ExpandPath(v.GetString(KeyAuthTokenFile)),
		},
		Storage: StorageConfig{Path: ExpandPath(v.GetString(KeyStoragePath))},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
			File:   ExpandPath(v.GetString(KeyLogFile)),
		},
		UI: UIConfig{Theme: v.GetString(KeyTheme)},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that do not depend on the command being run.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyLogLevel, err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %s must be console or json, got %q", common.ErrInvalidConfig, KeyLogFormat, c.Logging.Format)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyAPITimeout)
	}
	if c.API.Retries < 1 {
		return fmt.Errorf("%w: %s must be at least 1", common.ErrInvalidConfig, KeyAPIRetries)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyStoragePath)
	}
	return nil
}

// RequireBackend checks the settings needed to talk to a real backend.
func (c *Config) RequireBackend() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: %s (or FRONTDESK_API_BASE_URL)", common.ErrMissingConfig, KeyAPIBaseURL)
	}
	if c.Auth.Token == "" && c.Auth.TokenFile == "" {
		return fmt.Errorf("%w: %s or %s", common.ErrMissingConfig, KeyAuthToken, KeyAuthTokenFile)
	}
	return nil
}
