// Package config loads server settings from defaults, an optional config
// file, a .env file and the environment, in increasing order of precedence.
//
// KEYS:
// Every setting has a dotted key (see the Conf* constants). In the
// environment the dots become underscores and the key gets a DEVPROFILE_
// prefix, so "github.token" is read from DEVPROFILE_GITHUB_TOKEN. The most
// common settings also accept their conventional unprefixed names (PORT,
// GITHUB_TOKEN, LOG_LEVEL).
//
// VALIDATION:
// After unmarshalling, the struct is checked with go-playground/validator.
// A bad value fails startup with a message naming the field, instead of
// surfacing later as a confusing runtime error.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	ConfPort                 = "port"
	ConfWriteTimeout         = "write_timeout"
	ConfLogLevel             = "log.level"
	ConfLogFormat            = "log.format"
	ConfGitHubToken          = "github.token"
	ConfGitHubBaseURL        = "github.base_url"
	ConfGitHubHTTPTimeout    = "github.http_timeout"
	ConfGitHubIncludeStarred = "github.include_starred"
	ConfReadmeConcurrency    = "readme.concurrency"
	ConfReadmeTimeout        = "readme.timeout"
	ConfCacheSize            = "cache.size"
	ConfCacheTTL             = "cache.ttl"
	ConfCORSOrigins          = "cors.origins"
)

const envPrefix = "DEVPROFILE"

// Config is the full server configuration.
type Config struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
	// WriteTimeout caps one HTTP response, README fan-out included.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`

	Log    LogConfig    `mapstructure:"log"`
	GitHub GitHubConfig `mapstructure:"github"`
	Readme ReadmeConfig `mapstructure:"readme"`
	Cache  CacheConfig  `mapstructure:"cache"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type GitHubConfig struct {
	Token          string        `mapstructure:"token"`
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,url"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	IncludeStarred bool          `mapstructure:"include_starred"`
}

// ReadmeConfig bounds the README fan-out. A profile with N repositories can
// take up to ceil(N/Concurrency) * Timeout to classify; when that exceeds
// WriteTimeout the response is cut off while the lookup still completes
// and fills the cache, so the next request is answered from it.
type ReadmeConfig struct {
	Concurrency int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// CacheConfig sizes the profile cache. Size 0 disables it.
type CacheConfig struct {
	Size int           `mapstructure:"size" validate:"min=0"`
	TTL  time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins" validate:"dive,required"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(ConfPort, 8080)
	v.SetDefault(ConfWriteTimeout, 90*time.Second)
	v.SetDefault(ConfLogLevel, "info")
	v.SetDefault(ConfLogFormat, "text")
	v.SetDefault(ConfGitHubToken, "")
	v.SetDefault(ConfGitHubBaseURL, "")
	v.SetDefault(ConfGitHubHTTPTimeout, 15*time.Second)
	v.SetDefault(ConfGitHubIncludeStarred, false)
	v.SetDefault(ConfReadmeConcurrency, 8)
	v.SetDefault(ConfReadmeTimeout, 10*time.Second)
	v.SetDefault(ConfCacheSize, 256)
	v.SetDefault(ConfCacheTTL, 5*time.Minute)
	v.SetDefault(ConfCORSOrigins, []string{"*"})
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names, checked after the prefixed one.
	_ = v.BindEnv(ConfPort, envPrefix+"_PORT", "PORT")
	_ = v.BindEnv(ConfGitHubToken, envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv(ConfLogLevel, envPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load environment from %s: %w", path, err)
	}
	return nil
}

// Load reads the optional config file into v, then unmarshals and validates
// the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config: invalid value %v for %s (%s)", fe.Value(), fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by the log settings.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
