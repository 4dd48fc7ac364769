// Package config loads rolegate settings from an optional YAML file and the
// environment using Viper.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/log"
)

// EnvPrefix is prepended to every environment variable, e.g. ROLEGATE_API_URL
const EnvPrefix = "ROLEGATE"

// Defaults
const (
	DefaultAPIURL     = "http://localhost:8000/api"
	DefaultTimeout    = 30 * time.Second
	DefaultMockAddr   = ":8000"
	DefaultSigningKey = "rolegate-dev-signing-key"
	DefaultTokenTTL   = 24 * time.Hour
	dirName           = ".rolegate"
	fileName          = "config.yaml"
)

// Config holds application configuration
type Config struct {
	// APIURL is the backend base URL including the /api prefix.
	APIURL string `mapstructure:"api_url" yaml:"api_url" json:"api_url"`
	// StorageDir holds the persisted session.
	StorageDir string        `mapstructure:"storage_dir" yaml:"storage_dir" json:"storage_dir"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`

	Log  LogConfig  `mapstructure:"log" yaml:"log" json:"log"`
	Mock MockConfig `mapstructure:"mock" yaml:"mock" json:"mock"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// LogConfig selects the logger level and format
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// MockConfig configures the bundled mock backend
type MockConfig struct {
	Addr       string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	SigningKey string        `mapstructure:"signing_key" yaml:"signing_key" json:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
}

// LoadOptions controls where configuration comes from
type LoadOptions struct {
	// File is an explicit config path; it must exist when set.
	File string

	// Overrides are applied last, keyed by dotted config key. Empty
	// values are ignored so unset flags do not mask the file or env.
	Overrides map[string]string
}

// DefaultDir returns ~/.rolegate, or .rolegate when no home is known
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultFile returns ~/.rolegate/config.yaml
func DefaultFile() string {
	return filepath.Join(DefaultDir(), fileName)
}

// Load builds Config from defaults, the config file, ROLEGATE_* env vars
// and overrides, in increasing precedence
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("storage_dir", DefaultDir())
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("mock.addr", DefaultMockAddr)
	v.SetDefault("mock.signing_key", DefaultSigningKey)
	v.SetDefault("mock.token_ttl", DefaultTokenTTL)

	file := opts.File
	if file == "" {
		if _, err := os.Stat(DefaultFile()); err == nil {
			file = DefaultFile()
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file "+file, err).
				WithSuggestion("Check the file exists and is valid YAML")
		}
	}

	for key, value := range opts.Overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	cfg.File = file
	cfg.StorageDir = expandHome(cfg.StorageDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "api_url must be an absolute http(s) URL: "+c.APIURL).
			WithSuggestion("Set api_url in the config file or ROLEGATE_API_URL, e.g. " + DefaultAPIURL)
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "timeout must be positive")
	}
	if c.StorageDir == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "storage_dir must be set")
	}
	if c.Mock.TokenTTL <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "mock.token_ttl must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// Logger returns the logger configuration for the CLI
func (c *Config) Logger() log.Config {
	cfg := log.CLIConfig()
	if level, err := log.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	if format, err := log.ParseFormat(c.Log.Format); err == nil {
		cfg.Format = format
	}
	return cfg
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
