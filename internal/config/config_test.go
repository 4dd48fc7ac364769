package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/log"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"API_URL", "STORAGE_DIR", "TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "MOCK_ADDR", "MOCK_SIGNING_KEY", "MOCK_TOKEN_TTL"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, filepath.Join(home, ".rolegate"), cfg.StorageDir)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8000", cfg.Mock.Addr)
	assert.Equal(t, DefaultSigningKey, cfg.Mock.SigningKey)
	assert.Equal(t, 24*time.Hour, cfg.Mock.TokenTTL)
	assert.Empty(t, cfg.File)
}

func TestLoad_DefaultFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".rolegate")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
api_url: https://hr.example.com/api
timeout: 5s
log:
  level: debug
mock:
  token_ttl: 1h
`), 0o600))

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "https://hr.example.com/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, time.Hour, cfg.Mock.TokenTTL)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("api_url: http://file:1/api\nstorage_dir: ~/sessions\n"), 0o600))

	t.Setenv("ROLEGATE_API_URL", "http://env:2/api")
	t.Setenv("ROLEGATE_LOG_FORMAT", "json")

	cfg, err := Load(LoadOptions{File: file})
	require.NoError(t, err)
	assert.Equal(t, "http://env:2/api", cfg.APIURL)
	assert.Equal(t, "json", cfg.Log.Format)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "sessions"), cfg.StorageDir)

	cfg, err = Load(LoadOptions{File: file, Overrides: map[string]string{
		"api_url":   "http://flag:3/api",
		"log.level": "",
	}})
	require.NoError(t, err)
	assert.Equal(t, "http://flag:3/api", cfg.APIURL)
	assert.Equal(t, "warn", cfg.Log.Level, "empty overrides are ignored")
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))

	_, err = Load(LoadOptions{Overrides: map[string]string{"api_url": "localhost:8000"}})
	require.Error(t, err)
	assert.Contains(t, errors.UserMessage(err), "api_url")

	_, err = Load(LoadOptions{Overrides: map[string]string{"timeout": "-1s"}})
	require.Error(t, err)
	assert.Equal(t, "timeout must be positive", errors.UserMessage(err))

	_, err = Load(LoadOptions{Overrides: map[string]string{"log.level": "loud"}})
	require.Error(t, err)
	assert.Equal(t, `unknown log level "loud"`, errors.UserMessage(err))

	_, err = Load(LoadOptions{Overrides: map[string]string{"log.format": "xml"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

func TestConfig_Logger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "debug", Format: "json"}}
	lc := cfg.Logger()
	assert.Equal(t, log.LevelDebug, lc.Level)
	assert.Equal(t, log.FormatJSON, lc.Format)

	cfg = &Config{Log: LogConfig{Level: "WARNING", Format: "console"}}
	lc = cfg.Logger()
	assert.Equal(t, log.LevelWarn, lc.Level)
	assert.Equal(t, log.FormatText, lc.Format)
}
