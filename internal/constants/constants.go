package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "mdtoken"

	// ConfigFileName is the default config file name
	ConfigFileName = ".mdtokenrc.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "MDTOKEN"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatCSV  = "csv"
)

// Token counting constants
const (
	// DefaultCharsPerToken approximates tokens from byte length for
	// typical English markdown
	DefaultCharsPerToken = 4.0

	// DefaultTokensPerWord approximates tokens from whitespace words
	DefaultTokensPerWord = 1.333
)

// Exit codes returned by the CLI
const (
	ExitCodePass  = 0
	ExitCodeFail  = 1
	ExitCodeError = 2
)
