package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFindConfig_Explicit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "test.yaml", "model:\n  provider: mock\n")

	got, err := FindConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/agentzero.yaml")
	assert.Error(t, err)
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "agentzero.yaml", "model:\n  provider: mock\n")
	t.Chdir(dir)

	got, err := FindConfig("")
	require.NoError(t, err)
	assert.Equal(t, "agentzero.yaml", got)
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "agentzero.yaml", `
model:
  provider: anthropic
  name: claude-sonnet-4-20250514
rate_limit:
  max_requests: 10
  window: 30s
  estimator: tiktoken
history:
  keep_tail: 20
agent:
  max_depth: 2
  max_rounds: 50
  tool_timeout: 2m
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.Equal(t, 0.7, cfg.Model.Temperature, "unset keys keep defaults")

	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 80000, cfg.RateLimit.MaxCost)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "tiktoken", cfg.RateLimit.Estimator)

	assert.Equal(t, 5, cfg.History.KeepHead)
	assert.Equal(t, 20, cfg.History.KeepTail)

	assert.Equal(t, 2, cfg.Agent.MaxDepth)
	assert.Equal(t, 50, cfg.Agent.MaxRounds)
	assert.True(t, cfg.Agent.Stream)
	assert.Equal(t, 2*time.Minute, cfg.Agent.ToolTimeout)

	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("AGENTZERO_TEST_KEY", "secret123")
	path := writeConfig(t, t.TempDir(), "agentzero.yaml", "model:\n  api_key: ${AGENTZERO_TEST_KEY}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret123", cfg.Model.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "agentzero.yaml", "model: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "mock provider", mutate: func(c *Config) { c.Model.Provider = "mock" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Model.Provider = "llama" }, wantErr: "model.provider"},
		{name: "negative cap", mutate: func(c *Config) { c.RateLimit.MaxCost = -1 }, wantErr: "rate_limit"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantErr: "rate_limit.window"},
		{name: "unknown estimator", mutate: func(c *Config) { c.RateLimit.Estimator = "words" }, wantErr: "rate_limit.estimator"},
		{name: "negative history", mutate: func(c *Config) { c.History.KeepHead = -1 }, wantErr: "history"},
		{name: "negative depth", mutate: func(c *Config) { c.Agent.MaxDepth = -1 }, wantErr: "agent"},
		{name: "unknown level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "unknown format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Model.Provider = "llama"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.provider")
	assert.Contains(t, err.Error(), "log.level")
}

func TestRateLimitConfig_Limiter(t *testing.T) {
	limiter, est, err := Default().RateLimit.Limiter(nil)
	require.NoError(t, err)
	require.NotNil(t, limiter)
	assert.Equal(t, 2, est.Estimate("12345678"))

	_, _, err = RateLimitConfig{Estimator: "words", Window: time.Minute}.Limiter(nil)
	assert.Error(t, err)
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "debug", Format: "json"}.Logger(&buf)
	require.NoError(t, err)

	logger.Debug("config.test", "key", "value")
	assert.Contains(t, buf.String(), `"msg":"config.test"`)
	assert.Contains(t, buf.String(), `"key":"value"`)

	_, err = LogConfig{Level: "loud"}.Logger(nil)
	assert.Error(t, err)
}
