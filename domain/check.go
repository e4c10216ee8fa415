package domain

import (
	"context"
	"io"
)

// OutputFormat represents the output format for check results
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// CheckStatus classifies a file's token count against its resolved limit
type CheckStatus string

const (
	// StatusPass indicates the file is comfortably under its limit
	StatusPass CheckStatus = "pass"

	// StatusApproaching indicates the file has reached the warning
	// threshold but is still within its limit
	StatusApproaching CheckStatus = "approaching"

	// StatusViolation indicates the file exceeds its limit
	StatusViolation CheckStatus = "violation"
)

// SourceFile is a file queued for checking together with its content
type SourceFile struct {
	Path    string
	Content string
}

// FileCheck holds the evaluation of a single file against its resolved limit
type FileCheck struct {
	Path    string      `json:"path" yaml:"path"`
	Tokens  int         `json:"tokens" yaml:"tokens"`
	Limit   int         `json:"limit" yaml:"limit"`
	Pattern string      `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Status  CheckStatus `json:"status" yaml:"status"`
}

// Violation describes a file whose token count exceeds its limit
type Violation struct {
	Path           string  `json:"path" yaml:"path"`
	Tokens         int     `json:"tokens" yaml:"tokens"`
	Limit          int     `json:"limit" yaml:"limit"`
	Excess         int     `json:"excess" yaml:"excess"`
	PercentageOver float64 `json:"percentage_over" yaml:"percentage_over"`
	Pattern        string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// NewViolation derives a Violation from a failed file check
func NewViolation(check FileCheck) Violation {
	excess := check.Tokens - check.Limit
	return Violation{
		Path:           check.Path,
		Tokens:         check.Tokens,
		Limit:          check.Limit,
		Excess:         excess,
		PercentageOver: float64(excess) / float64(check.Limit) * 100.0,
		Pattern:        check.Pattern,
	}
}

// UnevaluatedFile records a file whose token count could not be computed
type UnevaluatedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// EnforcementResult aggregates the outcome of checking a set of files.
// Checks and Violations preserve the input order of the checked files.
type EnforcementResult struct {
	TotalFiles         int               `json:"total_files" yaml:"total_files"`
	TotalTokens        int               `json:"total_tokens" yaml:"total_tokens"`
	Checks             []FileCheck       `json:"checks" yaml:"checks"`
	Violations         []Violation       `json:"violations" yaml:"violations"`
	Unevaluated        []UnevaluatedFile `json:"unevaluated,omitempty" yaml:"unevaluated,omitempty"`
	TotalLimit         int               `json:"total_limit,omitempty" yaml:"total_limit,omitempty"`
	TotalLimitExceeded bool              `json:"total_limit_exceeded" yaml:"total_limit_exceeded"`
	Passed             bool              `json:"passed" yaml:"passed"`
}

// CheckRequest represents a request to check files against token limits
type CheckRequest struct {
	// Paths to check. Directories are searched for matching files,
	// explicit files are checked in the order given.
	Paths []string

	// Output configuration
	OutputFormat    OutputFormat
	OutputWriter    io.Writer
	ShowSuggestions bool
	NoColor         bool

	// ConfigPath selects an explicit configuration file. When empty the
	// default locations are searched.
	ConfigPath string

	// Overrides applied on top of the loaded configuration
	DefaultLimit     int
	TotalLimit       int
	IncludePatterns  []string
	ExcludePatterns  []string
	FailOnExceed     *bool
	RespectGitignore *bool

	// Execution options
	DryRun  bool
	Workers int
}

// CheckResponse represents the complete result of a check operation
type CheckResponse struct {
	Result      EnforcementResult `json:"result" yaml:"result"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	GeneratedAt string            `json:"generated_at" yaml:"generated_at"`
	Version     string            `json:"version" yaml:"version"`
	Config      map[string]any    `json:"config" yaml:"config"`
	DurationMs  int64             `json:"duration_ms" yaml:"duration_ms"`
}

// CheckService defines the interface for running token limit checks
type CheckService interface {
	// Check evaluates the requested paths against the configured limits
	Check(ctx context.Context, req CheckRequest) (*CheckResponse, error)
}

// TokenCounter computes the token cost of file content
type TokenCounter interface {
	// Count returns the token count for the given text
	Count(text string) (int, error)

	// Name identifies the counting strategy
	Name() string
}

// FileDiscoverer finds the files a check request applies to
type FileDiscoverer interface {
	// DiscoverFiles resolves the given paths into the ordered list of
	// files to check. Directories are walked for files matching the
	// include patterns, explicit files keep their argument order.
	// Non-fatal problems are reported as warnings.
	DiscoverFiles(paths []string, include, exclude []string, respectGitignore bool) (files []string, warnings []string, err error)

	// FileExists checks whether a file exists and is not a directory
	FileExists(path string) bool
}

// OutputFormatter defines the interface for formatting check results
type OutputFormatter interface {
	// Format converts the response into the requested output format
	Format(response *CheckResponse, format OutputFormat) (string, error)

	// Write formats and writes the response to the writer
	Write(response *CheckResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader loads limit configuration for check requests
type ConfigurationLoader interface {
	// LoadLimitConfig loads configuration from the given path, or from
	// the default locations when path is empty
	LoadLimitConfig(path string) (*LimitConfig, error)

	// DefaultLimitConfig returns the built-in configuration
	DefaultLimitConfig() *LimitConfig

	// ApplyOverrides layers request-level overrides on top of a loaded
	// configuration and revalidates the result
	ApplyOverrides(cfg *LimitConfig, req CheckRequest) (*LimitConfig, error)
}

// BoolPtr returns a pointer to the given bool value
func BoolPtr(b bool) *bool {
	return &b
}
