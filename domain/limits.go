package domain

import "fmt"

// DefaultWarnThreshold is the fraction of a limit at which a file is
// reported as approaching it
const DefaultWarnThreshold = 0.9

// LimitRule binds a path pattern to a token limit. A pattern is matched
// as an exact path, a substring, or a glob, in that priority order.
type LimitRule struct {
	Pattern   string `json:"pattern" yaml:"pattern"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
}

// LimitConfig holds the token limit policy for a check run
type LimitConfig struct {
	// DefaultLimit applies to files no rule matches
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// Rules are consulted in order; earlier rules win ties
	Rules []LimitRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// ExcludePatterns removes matching files from checking entirely
	ExcludePatterns []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// TotalLimit caps the aggregate token count across all checked
	// files. Zero disables the cap.
	TotalLimit int `json:"total_limit,omitempty" yaml:"total_limit,omitempty"`

	// WarnThreshold is the fraction of a limit at which files are
	// flagged as approaching it. Zero selects DefaultWarnThreshold.
	WarnThreshold float64 `json:"warn_threshold,omitempty" yaml:"warn_threshold,omitempty"`

	// FailOnExceed controls whether violations fail the run
	FailOnExceed bool `json:"fail_on_exceed" yaml:"fail_on_exceed"`
}

// ResolvedLimit is the limit chosen for a path together with the rule
// pattern that supplied it. Pattern is empty when the default applied.
type ResolvedLimit struct {
	Limit   int
	Pattern string
}

// NewLimitConfig validates cfg and returns a normalized copy. Rules that
// repeat a pattern keep the first occurrence's position and the last
// occurrence's limit, so later entries override earlier ones without
// changing precedence.
func NewLimitConfig(cfg LimitConfig) (*LimitConfig, error) {
	if cfg.DefaultLimit <= 0 {
		return nil, NewConfigError(fmt.Sprintf("default_limit must be positive, got %d", cfg.DefaultLimit), nil)
	}
	if cfg.TotalLimit < 0 {
		return nil, NewConfigError(fmt.Sprintf("total_limit must be positive, got %d", cfg.TotalLimit), nil)
	}
	if cfg.WarnThreshold == 0 {
		cfg.WarnThreshold = DefaultWarnThreshold
	}
	if cfg.WarnThreshold < 0 || cfg.WarnThreshold > 1 {
		return nil, NewConfigError(fmt.Sprintf("warn_threshold must be between 0 and 1, got %g", cfg.WarnThreshold), nil)
	}

	rules := make([]LimitRule, 0, len(cfg.Rules))
	seen := make(map[string]int, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if r.Pattern == "" {
			return nil, NewConfigError("limit rule pattern must not be empty", nil)
		}
		if r.MaxTokens <= 0 {
			return nil, NewConfigError(fmt.Sprintf("limit for pattern %q must be positive, got %d", r.Pattern, r.MaxTokens), nil)
		}
		if i, ok := seen[r.Pattern]; ok {
			rules[i].MaxTokens = r.MaxTokens
			continue
		}
		seen[r.Pattern] = len(rules)
		rules = append(rules, r)
	}
	cfg.Rules = rules
	cfg.ExcludePatterns = append([]string(nil), cfg.ExcludePatterns...)
	return &cfg, nil
}
