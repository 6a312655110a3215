package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.Retries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "default", cfg.UI.Theme)
	assert.Equal(t, "preferences.db", filepath.Base(cfg.Storage.Path))
	assert.ErrorIs(t, cfg.RequireBackend(), common.ErrMissingConfig)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://booking.example.com/api
  timeout: 5s
  retries: 2
auth:
  token_file: $FRONTDESK_TEST_DIR/token
logging:
  level: DEBUG
  format: json
ui:
  theme: catppuccin
`), 0o600))
	t.Setenv("FRONTDESK_TEST_DIR", dir)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, "https://booking.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retries)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.Auth.TokenFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "catppuccin", cfg.UI.Theme)
	assert.NoError(t, cfg.RequireBackend())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "log level", key: KeyLogLevel, value: "loud"},
		{name: "log format", key: KeyLogFormat, value: "xml"},
		{name: "timeout", key: KeyAPITimeout, value: "0s"},
		{name: "retries", key: KeyAPIRetries, value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)

			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FRONTDESK_X", "value")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a", "b"), ExpandPath("~/a/b"))
	assert.Equal(t, "/tmp/value/file", ExpandPath("/tmp/$FRONTDESK_X/file"))
}
