// Package matcher resolves token limits and exclusions for file paths.
//
// Limit rules are matched against slash-separated relative paths with a
// fixed priority: an exact path match wins over a substring match, which
// wins over a glob match, which wins over the configured default. Within
// the substring and glob tiers the longest pattern wins, and patterns of
// equal length fall back to their configuration order.
package matcher

import (
	"strings"

	"github.com/ludo-technologies/mdtoken/domain"
)

// Matcher resolves token limits and exclusions for file paths
type Matcher struct {
	cfg *domain.LimitConfig
}

// New builds a Matcher over a validated configuration
func New(cfg *domain.LimitConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Resolve picks the limit for path following the rule priority: exact
// match, then longest substring, then longest glob, then the default
func (m *Matcher) Resolve(p string) domain.ResolvedLimit {
	p = Normalize(p)

	for _, r := range m.cfg.Rules {
		if r.Pattern == p {
			return domain.ResolvedLimit{Limit: r.MaxTokens, Pattern: r.Pattern}
		}
	}

	if best, ok := m.bestMatch(p, func(pattern, path string) bool {
		return !IsGlob(pattern) && strings.Contains(path, pattern)
	}); ok {
		return best
	}

	if best, ok := m.bestMatch(p, func(pattern, path string) bool {
		return IsGlob(pattern) && Match(pattern, path)
	}); ok {
		return best
	}

	return domain.ResolvedLimit{Limit: m.cfg.DefaultLimit}
}

// bestMatch scans the rules in order and keeps the longest matching
// pattern. Equal lengths keep the earlier rule.
func (m *Matcher) bestMatch(path string, match func(pattern, path string) bool) (domain.ResolvedLimit, bool) {
	best := -1
	for i, r := range m.cfg.Rules {
		if !match(r.Pattern, path) {
			continue
		}
		if best < 0 || len(r.Pattern) > len(m.cfg.Rules[best].Pattern) {
			best = i
		}
	}
	if best < 0 {
		return domain.ResolvedLimit{}, false
	}
	r := m.cfg.Rules[best]
	return domain.ResolvedLimit{Limit: r.MaxTokens, Pattern: r.Pattern}, true
}

// IsExcluded reports whether path matches any exclude pattern. Exclusion
// is checked before limit resolution, so an excluded file is never
// evaluated even when a limit rule also matches it.
func (m *Matcher) IsExcluded(p string) bool {
	return Excluded(p, m.cfg.ExcludePatterns)
}

// Excluded reports whether path matches any of the exclude patterns
func Excluded(p string, patterns []string) bool {
	p = Normalize(p)
	for _, pattern := range patterns {
		if MatchExclude(pattern, p) {
			return true
		}
	}
	return false
}

// MatchExclude reports whether a single exclude pattern applies to path.
// Directory patterns like "build/**" cover the directory itself, its
// contents, and the same directory nested at any depth.
func MatchExclude(pattern, p string) bool {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		if p == base || strings.HasPrefix(p, base+"/") {
			return true
		}
		return Match("**/"+pattern, p)
	}
	if IsGlob(pattern) {
		return Match(pattern, p)
	}
	return strings.Contains(p, pattern)
}
