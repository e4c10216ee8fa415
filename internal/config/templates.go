package config

import "gopkg.in/yaml.v3"

// ProjectType identifies a documentation layout preset for init
type ProjectType string

const (
	ProjectTypeGeneral   ProjectType = "general"
	ProjectTypeDocs      ProjectType = "docs"
	ProjectTypeKnowledge ProjectType = "knowledge-base"
	ProjectTypeAgent     ProjectType = "agent-context"
)

// Strictness identifies how tight the generated limits are
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset bundles include patterns and starter rules for a
// project type
type ProjectPreset struct {
	Description string
	Include     []string
	Rules       RuleList
}

// StrictnessPreset bundles the limit values for a strictness level
type StrictnessPreset struct {
	Description   string
	DefaultLimit  int
	WarnThreshold float64

	// TotalLimit of zero means no aggregate cap
	TotalLimit int
}

// GetProjectPresets returns the selectable project types in menu order
func GetProjectPresets() []ProjectType {
	return []ProjectType{
		ProjectTypeGeneral,
		ProjectTypeDocs,
		ProjectTypeKnowledge,
		ProjectTypeAgent,
	}
}

// GetProjectPreset returns the preset for a project type
func GetProjectPreset(t ProjectType) ProjectPreset {
	switch t {
	case ProjectTypeDocs:
		return ProjectPreset{
			Description: "Documentation site with a docs/ tree",
			Include:     []string{"**/*.md"},
			Rules: RuleList{
				{Pattern: "README.md", MaxTokens: 3000},
				{Pattern: "docs/", MaxTokens: 4000},
				{Pattern: "docs/reference/", MaxTokens: 6000},
			},
		}
	case ProjectTypeKnowledge:
		return ProjectPreset{
			Description: "Knowledge base with long-form articles",
			Include:     []string{"**/*.md"},
			Rules: RuleList{
				{Pattern: "README.md", MaxTokens: 3000},
				{Pattern: "index.md", MaxTokens: 2000},
			},
		}
	case ProjectTypeAgent:
		return ProjectPreset{
			Description: "AI agent context files kept within a context window",
			Include:     []string{"**/*.md"},
			Rules: RuleList{
				{Pattern: "CLAUDE.md", MaxTokens: 5000},
				{Pattern: "AGENTS.md", MaxTokens: 5000},
				{Pattern: ".github/copilot-instructions.md", MaxTokens: 3000},
			},
		}
	default:
		return ProjectPreset{
			Description: "Any repository with markdown files",
			Include:     []string{"**/*.md"},
		}
	}
}

// GetStrictnessPresets returns the selectable strictness levels in menu
// order
func GetStrictnessPresets() []Strictness {
	return []Strictness{
		StrictnessRelaxed,
		StrictnessStandard,
		StrictnessStrict,
	}
}

// GetStrictnessPreset returns the preset for a strictness level
func GetStrictnessPreset(s Strictness) StrictnessPreset {
	switch s {
	case StrictnessRelaxed:
		return StrictnessPreset{
			Description:   "Generous limits, warnings close to the limit",
			DefaultLimit:  8000,
			WarnThreshold: 0.95,
		}
	case StrictnessStrict:
		return StrictnessPreset{
			Description:   "Tight limits with an aggregate cap",
			DefaultLimit:  2000,
			WarnThreshold: 0.85,
			TotalLimit:    100000,
		}
	default:
		return StrictnessPreset{
			Description:   "The built-in defaults",
			DefaultLimit:  DefaultTokenLimit,
			WarnThreshold: 0.9,
		}
	}
}

// BuildConfig combines a project and strictness preset into a full
// configuration ready to save
func BuildConfig(project ProjectType, strictness Strictness) *Config {
	cfg := DefaultConfig()
	p := GetProjectPreset(project)
	s := GetStrictnessPreset(strictness)

	cfg.Include = append([]string(nil), p.Include...)
	cfg.Limits = append(RuleList(nil), p.Rules...)
	cfg.DefaultLimit = s.DefaultLimit
	cfg.WarnThreshold = s.WarnThreshold
	if s.TotalLimit > 0 {
		limit := s.TotalLimit
		cfg.TotalLimit = &limit
	}
	return cfg
}

// GetMinimalConfigTemplate returns the smallest useful configuration
func GetMinimalConfigTemplate() string {
	return `# mdtoken configuration
default_limit: 4000
fail_on_exceed: true
`
}

// GetFullConfigTemplate returns a complete configuration for the given
// presets. The general/standard combination gets the fully documented
// template; other presets are generated from their preset values.
func GetFullConfigTemplate(project ProjectType, strictness Strictness) string {
	if project == ProjectTypeGeneral && strictness == StrictnessStandard {
		return string(defaultConfigYAML)
	}

	cfg := BuildConfig(project, strictness)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return string(defaultConfigYAML)
	}
	header := "# mdtoken configuration\n# Preset: " + string(project) + " / " + string(strictness) + "\n"
	return header + string(data)
}
