// Package config handles agentzero configuration loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/agentzero/logging"
	"github.com/hupe1980/agentzero/ratelimit"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order used when no
// explicit path is given: ./agentzero.yaml, then
// ~/.config/agentzero/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"agentzero.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "agentzero", "config.yaml"))
	}

	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise it returns the first existing entry of DefaultSearchPaths, or ""
// when there is none.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Config holds all agentzero configuration.
type Config struct {
	Model      ModelConfig     `yaml:"model"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	History    HistoryConfig   `yaml:"history"`
	Agent      AgentConfig     `yaml:"agent"`
	PromptsDir string          `yaml:"prompts_dir"`
	Log        LogConfig       `yaml:"log"`
}

// ModelConfig selects the chat model.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, mock
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// APIKey falls back to OPENAI_API_KEY / ANTHROPIC_API_KEY when empty.
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// RateLimitConfig bounds generation requests per trailing window.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	MaxCost     int           `yaml:"max_cost"`
	Window      time.Duration `yaml:"window"`
	Estimator   string        `yaml:"estimator"` // chars, tiktoken
}

// HistoryConfig sets the compaction window.
type HistoryConfig struct {
	KeepHead int `yaml:"keep_head"`
	KeepTail int `yaml:"keep_tail"`
}

// AgentConfig bounds the control loop and the delegation tree.
type AgentConfig struct {
	MaxDepth        int           `yaml:"max_depth"`
	MaxRounds       int           `yaml:"max_rounds"` // 0 = unbounded
	KeepSubordinate bool          `yaml:"keep_subordinate"`
	Stream          bool          `yaml:"stream"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
	ToolTimeout     time.Duration `yaml:"tool_timeout"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 30,
			MaxCost:     80000,
			Window:      time.Minute,
			Estimator:   "chars",
		},
		History: HistoryConfig{
			KeepHead: 5,
			KeepTail: 10,
		},
		Agent: AgentConfig{
			MaxDepth: 5,
			Stream:   true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file. Environment variables in the
// file are expanded and unset keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads the file FindConfig(explicit) selects, or returns the
// defaults when no file exists. The returned path is empty in that case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		errs = append(errs, fmt.Errorf("model.provider: unknown provider %q", c.Model.Provider))
	}

	if c.RateLimit.MaxRequests < 0 || c.RateLimit.MaxCost < 0 {
		errs = append(errs, errors.New("rate_limit: caps must not be negative"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window: must be positive"))
	}
	if _, err := ratelimit.NewEstimator(c.RateLimit.Estimator); err != nil {
		errs = append(errs, fmt.Errorf("rate_limit.estimator: %w", err))
	}

	if c.History.KeepHead < 0 || c.History.KeepTail < 0 {
		errs = append(errs, errors.New("history: keep_head and keep_tail must not be negative"))
	}

	if c.Agent.MaxDepth < 0 || c.Agent.MaxRounds < 0 {
		errs = append(errs, errors.New("agent: max_depth and max_rounds must not be negative"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Limiter builds the process-wide rate limiter and its cost estimator.
func (c RateLimitConfig) Limiter(logger logging.Logger) (*ratelimit.Limiter, ratelimit.Estimator, error) {
	est, err := ratelimit.NewEstimator(c.Estimator)
	if err != nil {
		return nil, nil, err
	}

	limiter := ratelimit.New(func(o *ratelimit.Options) {
		o.MaxRequests = c.MaxRequests
		o.MaxCost = c.MaxCost
		o.Window = c.Window
		if logger != nil {
			o.Logger = logger
		}
	})

	return limiter, est, nil
}

// Logger builds the structured logger writing to w, or to stderr when w is
// nil so logs do not interleave with streamed output on stdout.
func (c LogConfig) Logger(w io.Writer) (*logging.AgentLogger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if w != nil {
		cfg.Output = w
	}

	return logging.NewLogger(cfg), nil
}
