// Package config loads server settings from defaults, an optional config
// file, ADMINSHELL_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const envPrefix = "ADMINSHELL"

// Keys.
const (
	KeyListen       = "listen"
	KeyDataDir      = "data_dir"
	KeyStorage      = "storage"
	KeyAuthMode     = "auth.mode"
	KeyAuthDelay    = "auth.delay"
	KeyIdleTimeout  = "session.idle_timeout"
	KeyCookieSecret = "session.cookie_secret"
	KeySeedDemo     = "seed.demo"
	KeySeedFile     = "seed.file"
	KeyLocale       = "ui.locale"
	KeyTLSCert      = "tls.cert"
	KeyTLSKey       = "tls.key"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

// Storage backends.
const (
	StorageBBolt  = "bbolt"
	StorageMemory = "memory"
)

// Auth modes.
const (
	AuthSimulated = "simulated"
	AuthAccounts  = "accounts"
)

// Config is the resolved server configuration.
type Config struct {
	Listen  string
	DataDir string
	Storage string

	AuthMode  string
	AuthDelay time.Duration

	IdleTimeout  time.Duration
	CookieSecret string

	SeedDemo bool
	SeedFile string

	Locale language.Tag

	TLSCert string
	TLSKey  string

	LogLevel  slog.Level
	LogFormat string
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeyStorage, StorageBBolt)
	v.SetDefault(KeyAuthMode, AuthSimulated)
	v.SetDefault(KeyAuthDelay, "1s")
	v.SetDefault(KeyIdleTimeout, "30m")
	v.SetDefault(KeyCookieSecret, "")
	v.SetDefault(KeySeedDemo, true)
	v.SetDefault(KeySeedFile, "")
	v.SetDefault(KeyLocale, "ko")
	v.SetDefault(KeyTLSCert, "")
	v.SetDefault(KeyTLSKey, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

// Load resolves the configuration held by v. When file is non-empty it
// must exist; its format follows the extension.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Listen:       v.GetString(KeyListen),
		DataDir:      v.GetString(KeyDataDir),
		Storage:      strings.ToLower(v.GetString(KeyStorage)),
		AuthMode:     strings.ToLower(v.GetString(KeyAuthMode)),
		AuthDelay:    v.GetDuration(KeyAuthDelay),
		IdleTimeout:  v.GetDuration(KeyIdleTimeout),
		CookieSecret: v.GetString(KeyCookieSecret),
		SeedDemo:     v.GetBool(KeySeedDemo),
		SeedFile:     v.GetString(KeySeedFile),
		TLSCert:      v.GetString(KeyTLSCert),
		TLSKey:       v.GetString(KeyTLSKey),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
	}

	var errs []error
	tag, err := language.Parse(v.GetString(KeyLocale))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLocale, err))
	}
	cfg.Locale = tag

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyListen))
	}
	switch c.Storage {
	case StorageBBolt:
		if c.DataDir == "" {
			errs = append(errs, fmt.Errorf("%s is required for %s storage", KeyDataDir, StorageBBolt))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", KeyStorage, c.Storage))
	}
	switch c.AuthMode {
	case AuthSimulated, AuthAccounts:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown mode %q", KeyAuthMode, c.AuthMode))
	}
	if c.AuthDelay < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyAuthDelay))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyIdleTimeout))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, fmt.Errorf("%s and %s must be set together", KeyTLSCert, KeyTLSKey))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown format %q", KeyLogFormat, c.LogFormat))
	}
	return errs
}

// TLSEnabled reports whether a certificate pair is configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
