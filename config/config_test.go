package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, StorageBBolt, cfg.Storage)
	assert.Equal(t, AuthSimulated, cfg.AuthMode)
	assert.Equal(t, time.Second, cfg.AuthDelay)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "ko", cfg.Locale.String())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.TLSEnabled())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminshell.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = ":9000"
storage = "memory"

[auth]
mode = "accounts"
delay = "250ms"

[ui]
locale = "en-US"

[log]
level = "debug"
format = "text"
`), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, AuthAccounts, cfg.AuthMode)
	assert.Equal(t, 250*time.Millisecond, cfg.AuthDelay)
	assert.Equal(t, "en-US", cfg.Locale.String())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ADMINSHELL_LISTEN", ":7000")
	t.Setenv("ADMINSHELL_AUTH_DELAY", "0s")
	t.Setenv("ADMINSHELL_SEED_DEMO", "false")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Zero(t, cfg.AuthDelay)
	assert.False(t, cfg.SeedDemo)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]any{
		"Storage":   {KeyStorage: "redis"},
		"AuthMode":  {KeyAuthMode: "ldap"},
		"Locale":    {KeyLocale: "not a locale!"},
		"LogLevel":  {KeyLogLevel: "loud"},
		"LogFormat": {KeyLogFormat: "xml"},
		"TLSHalf":   {KeyTLSCert: "cert.pem"},
		"Delay":     {KeyAuthDelay: "-1s"},
	}
	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range overrides {
				v.Set(k, val)
			}
			_, err := Load(v, "")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
