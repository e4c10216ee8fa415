// Package config handles mdtoken configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/constants"
	"github.com/ludo-technologies/mdtoken/internal/counter"
)

// Default configuration values
const (
	// DefaultTokenLimit is the limit applied when no rule matches
	DefaultTokenLimit = 4000
)

// DefaultExcludePatterns are the directories skipped out of the box
var DefaultExcludePatterns = []string{
	".git/**",
	"node_modules/**",
	"venv/**",
	".venv/**",
	"build/**",
	"dist/**",
	"__pycache__/**",
}

// DefaultIncludePatterns select the files directory scans pick up
var DefaultIncludePatterns = []string{"**/*.md"}

// CounterConfig selects the token counting strategy
type CounterConfig struct {
	// Mode is "estimate" (length based) or "words"
	Mode string `yaml:"mode" json:"mode" mapstructure:"mode"`

	// Model picks the encoding of a known model, e.g. "gpt-4o"
	Model string `yaml:"model,omitempty" json:"model,omitempty" mapstructure:"model"`

	// Encoding names the encoding directly, e.g. "cl100k_base".
	// Ignored when Model is set.
	Encoding string `yaml:"encoding,omitempty" json:"encoding,omitempty" mapstructure:"encoding"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	// Format is one of text, json, yaml, csv
	Format string `yaml:"format" json:"format" mapstructure:"format"`

	// Color enables ANSI colors on interactive terminals
	Color bool `yaml:"color" json:"color" mapstructure:"color"`

	// ShowSuggestions adds remediation hints to violation reports
	ShowSuggestions bool `yaml:"show_suggestions" json:"show_suggestions" mapstructure:"show_suggestions"`
}

// PerformanceConfig tunes parallel token counting
type PerformanceConfig struct {
	// Workers caps concurrent counting. Zero picks a sensible value
	// from the machine's CPU count.
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`
}

// Config holds the complete mdtoken configuration
type Config struct {
	// DefaultLimit is the token limit for files no rule matches
	DefaultLimit int `yaml:"default_limit" json:"default_limit" mapstructure:"default_limit"`

	// Limits are per-pattern token limits in precedence order
	Limits RuleList `yaml:"limits,omitempty" json:"limits,omitempty" mapstructure:"-"`

	// Exclude lists patterns for files that are never checked
	Exclude []string `yaml:"exclude" json:"exclude" mapstructure:"exclude"`

	// TotalLimit caps the aggregate token count across all checked
	// files. Nil disables the cap.
	TotalLimit *int `yaml:"total_limit,omitempty" json:"total_limit,omitempty" mapstructure:"total_limit"`

	// FailOnExceed makes the check command exit nonzero on violations
	FailOnExceed bool `yaml:"fail_on_exceed" json:"fail_on_exceed" mapstructure:"fail_on_exceed"`

	// WarnThreshold is the fraction of a limit at which files are
	// reported as approaching it
	WarnThreshold float64 `yaml:"warn_threshold" json:"warn_threshold" mapstructure:"warn_threshold"`

	// Include lists the glob patterns directory scans look for
	Include []string `yaml:"include" json:"include" mapstructure:"include"`

	// RespectGitignore skips git-ignored files during discovery
	RespectGitignore bool `yaml:"respect_gitignore" json:"respect_gitignore" mapstructure:"respect_gitignore"`

	// Counter selects the token counting strategy
	Counter CounterConfig `yaml:"counter" json:"counter" mapstructure:"counter"`

	// Output controls report rendering
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Performance tunes parallel counting
	Performance PerformanceConfig `yaml:"performance" json:"performance" mapstructure:"performance"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:     DefaultTokenLimit,
		Limits:           RuleList{},
		Exclude:          append([]string(nil), DefaultExcludePatterns...),
		FailOnExceed:     true,
		WarnThreshold:    domain.DefaultWarnThreshold,
		Include:          append([]string(nil), DefaultIncludePatterns...),
		RespectGitignore: true,
		Counter: CounterConfig{
			Mode:     counter.ModeEstimate,
			Encoding: counter.DefaultEncoding,
		},
		Output: OutputConfig{
			Format:          constants.OutputFormatText,
			Color:           true,
			ShowSuggestions: true,
		},
		Performance: PerformanceConfig{},
	}
}

// LoadConfig loads configuration from the given path. When path is empty
// the default locations are searched, and when no file exists anywhere
// the built-in defaults apply. MDTOKEN_* environment variables override
// scalar settings last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findDefaultConfig()
	}
	if path != "" {
		if err := decodeConfigFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeConfigFile decodes YAML from path over the defaults already in
// cfg, so keys absent from the file keep their default values. An empty
// file is a valid configuration.
func decodeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML in config file %s: %w", path, err)
	}
	return nil
}

// findDefaultConfig searches the standard locations for a configuration
// file: the MDTOKEN_CONFIG environment variable, the working directory
// and its parents, the XDG config directory, and the home directory.
func findDefaultConfig() string {
	if env := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); env != "" && fileExists(env) {
		return env
	}

	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for {
			candidate := filepath.Join(dir, constants.ConfigFileName)
			if fileExists(candidate) {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate := filepath.Join(xdg, constants.ToolName, "config.yaml")
		if fileExists(candidate) {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", constants.ToolName, "config.yaml")
		if fileExists(candidate) {
			return candidate
		}
		candidate = filepath.Join(home, constants.ConfigFileName)
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

// envOverrideKeys are the scalar settings the environment can override.
// Rule order cannot be expressed through environment variables, so the
// limits themselves are file-only.
var envOverrideKeys = []string{
	"default_limit",
	"total_limit",
	"fail_on_exceed",
	"warn_threshold",
	"respect_gitignore",
	"counter.mode",
	"counter.model",
	"counter.encoding",
	"output.format",
	"output.color",
	"output.show_suggestions",
	"performance.workers",
}

// applyEnvOverrides layers MDTOKEN_* environment variables over cfg,
// e.g. MDTOKEN_DEFAULT_LIMIT=2000 or MDTOKEN_COUNTER_MODE=words
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envOverrideKeys {
		_ = v.BindEnv(key)
	}

	if v.IsSet("default_limit") {
		cfg.DefaultLimit = v.GetInt("default_limit")
	}
	if v.IsSet("total_limit") {
		limit := v.GetInt("total_limit")
		cfg.TotalLimit = &limit
	}
	if v.IsSet("fail_on_exceed") {
		cfg.FailOnExceed = v.GetBool("fail_on_exceed")
	}
	if v.IsSet("warn_threshold") {
		cfg.WarnThreshold = v.GetFloat64("warn_threshold")
	}
	if v.IsSet("respect_gitignore") {
		cfg.RespectGitignore = v.GetBool("respect_gitignore")
	}
	if v.IsSet("counter.mode") {
		cfg.Counter.Mode = v.GetString("counter.mode")
	}
	if v.IsSet("counter.model") {
		cfg.Counter.Model = v.GetString("counter.model")
	}
	if v.IsSet("counter.encoding") {
		cfg.Counter.Encoding = v.GetString("counter.encoding")
	}
	if v.IsSet("output.format") {
		cfg.Output.Format = v.GetString("output.format")
	}
	if v.IsSet("output.color") {
		cfg.Output.Color = v.GetBool("output.color")
	}
	if v.IsSet("output.show_suggestions") {
		cfg.Output.ShowSuggestions = v.GetBool("output.show_suggestions")
	}
	if v.IsSet("performance.workers") {
		cfg.Performance.Workers = v.GetInt("performance.workers")
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be a positive integer, got %d", c.DefaultLimit)
	}
	for _, rule := range c.Limits {
		if rule.Pattern == "" {
			return errors.New("limit patterns must not be empty")
		}
		if rule.MaxTokens <= 0 {
			return fmt.Errorf("limit for pattern %q must be a positive integer, got %d", rule.Pattern, rule.MaxTokens)
		}
	}
	if c.TotalLimit != nil && *c.TotalLimit <= 0 {
		return fmt.Errorf("total_limit must be a positive integer or null, got %d", *c.TotalLimit)
	}
	if c.WarnThreshold < 0 || c.WarnThreshold > 1 {
		return fmt.Errorf("warn_threshold must be between 0 and 1, got %g", c.WarnThreshold)
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers must be >= 0, got %d", c.Performance.Workers)
	}
	switch c.Output.Format {
	case constants.OutputFormatText, constants.OutputFormatJSON, constants.OutputFormatYAML, constants.OutputFormatCSV:
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml, csv, got %q", c.Output.Format)
	}
	if _, err := counter.ForConfig(c.Counter.Mode, c.Counter.Model, c.Counter.Encoding); err != nil {
		return fmt.Errorf("invalid counter configuration: %w", err)
	}
	return nil
}

// ToLimitConfig converts the file configuration into the validated
// domain form the enforcer consumes
func (c *Config) ToLimitConfig() (*domain.LimitConfig, error) {
	total := 0
	if c.TotalLimit != nil {
		total = *c.TotalLimit
	}
	return domain.NewLimitConfig(domain.LimitConfig{
		DefaultLimit:    c.DefaultLimit,
		Rules:           []domain.LimitRule(c.Limits),
		ExcludePatterns: c.Exclude,
		TotalLimit:      total,
		WarnThreshold:   c.WarnThreshold,
		FailOnExceed:    c.FailOnExceed,
	})
}

// BuildCounter constructs the token counter the configuration selects
func (c *Config) BuildCounter() (domain.TokenCounter, error) {
	return counter.ForConfig(c.Counter.Mode, c.Counter.Model, c.Counter.Encoding)
}

// SaveConfig writes the configuration to path as YAML, keeping the
// rules in precedence order
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
