package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/mdtoken/domain"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".mdtokenrc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultLimit != 4000 {
		t.Errorf("DefaultLimit should be 4000, got %d", cfg.DefaultLimit)
	}
	if !cfg.FailOnExceed {
		t.Error("FailOnExceed should default to true")
	}
	if cfg.TotalLimit != nil {
		t.Error("TotalLimit should default to nil")
	}
	if cfg.WarnThreshold != 0.9 {
		t.Errorf("WarnThreshold should be 0.9, got %g", cfg.WarnThreshold)
	}
	if len(cfg.Exclude) == 0 || cfg.Exclude[0] != ".git/**" {
		t.Errorf("Exclude should start with .git/**, got %v", cfg.Exclude)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 4000 {
		t.Errorf("Expected default limit 4000, got %d", cfg.DefaultLimit)
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Explicitly named missing file should fail")
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 4000 {
		t.Errorf("Empty file should keep defaults, got %d", cfg.DefaultLimit)
	}
	if !cfg.FailOnExceed {
		t.Error("Empty file should keep fail_on_exceed default")
	}
}

func TestLoadConfig_NonMappingFails(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "just a string")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Non-mapping YAML should fail")
	}
}

func TestLoadConfig_InvalidYAMLFails(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "default_limit: [unclosed")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Invalid YAML should fail")
	}
}

func TestLoadConfig_Values(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
default_limit: 2000
limits:
  README.md: 3000
  CLAUDE.md: 5000
  docs/: 1500
exclude:
  - drafts/**
total_limit: 50000
fail_on_exceed: false
warn_threshold: 0.8
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.DefaultLimit != 2000 {
		t.Errorf("DefaultLimit should be 2000, got %d", cfg.DefaultLimit)
	}
	if cfg.TotalLimit == nil || *cfg.TotalLimit != 50000 {
		t.Error("TotalLimit should be 50000")
	}
	if cfg.FailOnExceed {
		t.Error("FailOnExceed should be false")
	}
	if cfg.WarnThreshold != 0.8 {
		t.Errorf("WarnThreshold should be 0.8, got %g", cfg.WarnThreshold)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "drafts/**" {
		t.Errorf("Exclude should be replaced by the file, got %v", cfg.Exclude)
	}

	// Mapping order must become rule order
	want := []domain.LimitRule{
		{Pattern: "README.md", MaxTokens: 3000},
		{Pattern: "CLAUDE.md", MaxTokens: 5000},
		{Pattern: "docs/", MaxTokens: 1500},
	}
	if len(cfg.Limits) != len(want) {
		t.Fatalf("Expected %d rules, got %d", len(want), len(cfg.Limits))
	}
	for i, rule := range cfg.Limits {
		if rule != want[i] {
			t.Errorf("Rule %d should be %+v, got %+v", i, want[i], rule)
		}
	}
}

func TestLoadConfig_ListFormLimits(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
limits:
  - pattern: README.md
    max_tokens: 3000
  - pattern: docs/
    max_tokens: 1500
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(cfg.Limits) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(cfg.Limits))
	}
	if cfg.Limits[0].Pattern != "README.md" || cfg.Limits[1].Pattern != "docs/" {
		t.Errorf("List form should keep order, got %v", cfg.Limits)
	}
}

func TestLoadConfig_NonIntegerLimitFails(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
limits:
  README.md: lots
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("Non-integer limit should fail")
	}
}

func TestLoadConfig_FindsConfigInParent(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "default_limit: 1234\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Failed to create directories: %v", err)
	}
	t.Chdir(sub)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 1234 {
		t.Errorf("Config should be found in parent directory, got limit %d", cfg.DefaultLimit)
	}
}

func TestLoadConfig_EnvConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "default_limit: 777\n")
	t.Setenv("MDTOKEN_CONFIG", path)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 777 {
		t.Errorf("MDTOKEN_CONFIG should be honored, got limit %d", cfg.DefaultLimit)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "default_limit: 2000\n")
	t.Setenv("MDTOKEN_DEFAULT_LIMIT", "3333")
	t.Setenv("MDTOKEN_COUNTER_MODE", "words")
	t.Setenv("MDTOKEN_FAIL_ON_EXCEED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 3333 {
		t.Errorf("Environment should override the file, got %d", cfg.DefaultLimit)
	}
	if cfg.Counter.Mode != "words" {
		t.Errorf("Counter mode should come from the environment, got %q", cfg.Counter.Mode)
	}
	if cfg.FailOnExceed {
		t.Error("FailOnExceed should be overridden to false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default limit", func(c *Config) { c.DefaultLimit = 0 }},
		{"negative default limit", func(c *Config) { c.DefaultLimit = -100 }},
		{"zero rule limit", func(c *Config) { c.Limits = RuleList{{Pattern: "a.md", MaxTokens: 0}} }},
		{"empty rule pattern", func(c *Config) { c.Limits = RuleList{{Pattern: "", MaxTokens: 100}} }},
		{"zero total limit", func(c *Config) { zero := 0; c.TotalLimit = &zero }},
		{"warn threshold above one", func(c *Config) { c.WarnThreshold = 1.5 }},
		{"negative workers", func(c *Config) { c.Performance.Workers = -1 }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"unknown counter mode", func(c *Config) { c.Counter.Mode = "magic" }},
		{"unknown encoding", func(c *Config) { c.Counter.Encoding = "nope_base" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestToLimitConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits = RuleList{{Pattern: "docs/", MaxTokens: 1500}}
	total := 50000
	cfg.TotalLimit = &total

	lc, err := cfg.ToLimitConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lc.DefaultLimit != 4000 {
		t.Errorf("DefaultLimit should carry over, got %d", lc.DefaultLimit)
	}
	if lc.TotalLimit != 50000 {
		t.Errorf("TotalLimit should carry over, got %d", lc.TotalLimit)
	}
	if len(lc.Rules) != 1 || lc.Rules[0].Pattern != "docs/" {
		t.Errorf("Rules should carry over, got %v", lc.Rules)
	}

	cfg.TotalLimit = nil
	lc, err = cfg.ToLimitConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lc.TotalLimit != 0 {
		t.Errorf("Absent total limit should convert to 0, got %d", lc.TotalLimit)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mdtokenrc.yaml")

	cfg := DefaultConfig()
	cfg.Limits = RuleList{
		{Pattern: "z.md", MaxTokens: 100},
		{Pattern: "a.md", MaxTokens: 200},
		{Pattern: "m.md", MaxTokens: 300},
	}
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	want := []string{"z.md", "a.md", "m.md"}
	for i, rule := range loaded.Limits {
		if rule.Pattern != want[i] {
			t.Errorf("Rule %d should be %s after round trip, got %s", i, want[i], rule.Pattern)
		}
	}
}

func TestDefaultConfigTemplate(t *testing.T) {
	data := DefaultConfigTemplate()
	if !strings.Contains(string(data), "default_limit") {
		t.Error("Template should mention default_limit")
	}

	path := filepath.Join(t.TempDir(), ".mdtokenrc.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Template should load cleanly: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Template should validate: %v", err)
	}
}

func TestBuildConfig_Presets(t *testing.T) {
	cfg := BuildConfig(ProjectTypeAgent, StrictnessStrict)

	if cfg.DefaultLimit != 2000 {
		t.Errorf("Strict preset should set limit 2000, got %d", cfg.DefaultLimit)
	}
	if cfg.TotalLimit == nil || *cfg.TotalLimit != 100000 {
		t.Error("Strict preset should set a total limit")
	}
	if len(cfg.Limits) == 0 || cfg.Limits[0].Pattern != "CLAUDE.md" {
		t.Errorf("Agent preset should start with CLAUDE.md rule, got %v", cfg.Limits)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Preset config should validate: %v", err)
	}
}
