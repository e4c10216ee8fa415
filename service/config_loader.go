package service

import (
	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadLimitConfig loads the limit configuration from the given path, or
// from the default locations when path is empty
func (c *ConfigurationLoaderImpl) LoadLimitConfig(path string) (*domain.LimitConfig, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg.ToLimitConfig()
}

// DefaultLimitConfig returns the built-in limit configuration
func (c *ConfigurationLoaderImpl) DefaultLimitConfig() *domain.LimitConfig {
	// The built-in defaults always validate
	limitCfg, err := config.DefaultConfig().ToLimitConfig()
	if err != nil {
		panic(err)
	}
	return limitCfg
}

// ApplyOverrides layers request-level overrides on top of a loaded limit
// configuration and revalidates the result
func (c *ConfigurationLoaderImpl) ApplyOverrides(cfg *domain.LimitConfig, req domain.CheckRequest) (*domain.LimitConfig, error) {
	merged := *cfg
	if req.DefaultLimit > 0 {
		merged.DefaultLimit = req.DefaultLimit
	}
	if req.TotalLimit > 0 {
		merged.TotalLimit = req.TotalLimit
	}
	if len(req.ExcludePatterns) > 0 {
		merged.ExcludePatterns = append(append([]string(nil), merged.ExcludePatterns...), req.ExcludePatterns...)
	}
	if req.FailOnExceed != nil {
		merged.FailOnExceed = *req.FailOnExceed
	}
	return domain.NewLimitConfig(merged)
}

// MergeConfig layers request-level overrides on top of a full file
// configuration. Flags win over file values, file values win over the
// built-in defaults; the result still has to pass validation before use.
func MergeConfig(cfg *config.Config, req domain.CheckRequest) *config.Config {
	merged := *cfg

	if req.DefaultLimit > 0 {
		merged.DefaultLimit = req.DefaultLimit
	}
	if req.TotalLimit > 0 {
		limit := req.TotalLimit
		merged.TotalLimit = &limit
	}
	if len(req.IncludePatterns) > 0 {
		merged.Include = append([]string(nil), req.IncludePatterns...)
	}
	if len(req.ExcludePatterns) > 0 {
		merged.Exclude = append(append([]string(nil), merged.Exclude...), req.ExcludePatterns...)
	}
	if req.FailOnExceed != nil {
		merged.FailOnExceed = *req.FailOnExceed
	}
	if req.RespectGitignore != nil {
		merged.RespectGitignore = *req.RespectGitignore
	}
	if req.OutputFormat != "" {
		merged.Output.Format = string(req.OutputFormat)
	}
	if req.Workers > 0 {
		merged.Performance.Workers = req.Workers
	}
	return &merged
}
