package config

import (
	_ "embed"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// DefaultConfigTemplate returns the documented starter configuration
// that mdtoken init writes
func DefaultConfigTemplate() []byte {
	return defaultConfigYAML
}
