package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ludo-technologies/mdtoken/app"
	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/config"
	"github.com/ludo-technologies/mdtoken/internal/constants"
	"github.com/ludo-technologies/mdtoken/service"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkConfigPath   string
	checkOutputFormat string
	checkOutputPath   string
	checkVerbose      bool
	checkDryRun       bool
	checkStrict       bool
	checkDefaultLimit int
	checkTotalLimit   int
	checkExclude      []string
	checkNoGitignore  bool
	checkWorkers      int
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check markdown files against token limits",
		Long: `Check markdown files against the token limits configured in
.mdtokenrc.yaml. Directories are searched recursively for markdown files;
explicit file arguments are checked in the order given, which is how
pre-commit invokes mdtoken on staged files.

Exit codes:
  0 - All files within limits (or --dry-run / fail_on_exceed: false)
  1 - Token limit violation(s)
  2 - Configuration or I/O error

Examples:
  # Check the current directory
  mdtoken check

  # Check specific files (pre-commit style)
  mdtoken check README.md docs/guide.md

  # Preview without failing the build
  mdtoken check --dry-run --verbose

  # Tighter limit for one run
  mdtoken check --default-limit 2000 docs/

  # JSON output for machine parsing
  mdtoken check --format json`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVarP(&checkOutputFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&checkOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Show remediation suggestions for violations")
	cmd.Flags().BoolVar(&checkDryRun, "dry-run", false,
		"Report violations but always exit zero")
	cmd.Flags().BoolVar(&checkStrict, "strict", false,
		"Exit nonzero on violations even when fail_on_exceed is false")
	cmd.Flags().IntVar(&checkDefaultLimit, "default-limit", 0,
		"Override the default token limit")
	cmd.Flags().IntVar(&checkTotalLimit, "total-limit", 0,
		"Override the aggregate token limit")
	cmd.Flags().StringSliceVar(&checkExclude, "exclude", nil,
		"Additional exclude patterns (repeatable)")
	cmd.Flags().BoolVar(&checkNoGitignore, "no-gitignore", false,
		"Do not skip git-ignored files")
	cmd.Flags().IntVar(&checkWorkers, "workers", 0,
		"Parallel token counting workers (0 = auto)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	fileCfg, cfgErr := config.LoadConfig(checkConfigPath)
	if cfgErr != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: cfgErr.Error()}
	}
	format, useColor, showSuggestions := resolveOutputSettings(cmd.Flags(), fileCfg.Output)
	useColor = useColor && service.ColorsEnabled()

	req := domain.CheckRequest{
		Paths:           args,
		OutputFormat:    domain.OutputFormat(format),
		OutputWriter:    os.Stdout,
		ShowSuggestions: showSuggestions,
		NoColor:         !useColor,
		ConfigPath:      checkConfigPath,
		DefaultLimit:    checkDefaultLimit,
		TotalLimit:      checkTotalLimit,
		ExcludePatterns: checkExclude,
		DryRun:          checkDryRun,
		Workers:         checkWorkers,
	}
	if checkNoGitignore {
		req.RespectGitignore = domain.BoolPtr(false)
	}
	if checkOutputPath != "" {
		f, createErr := os.Create(checkOutputPath)
		if createErr != nil {
			return &CheckExitError{Code: constants.ExitCodeError,
				Message: fmt.Sprintf("failed to create output file: %v", createErr)}
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = &CheckExitError{Code: constants.ExitCodeError,
					Message: fmt.Sprintf("failed to close output file: %v", closeErr)}
			}
		}()
		req.OutputWriter = f
		useColor = false
		req.NoColor = true
	}

	// Progress bars only make sense for interactive text runs
	pm := service.NewProgressManager(req.OutputFormat == domain.OutputFormatText && checkOutputPath == "")
	defer pm.Close()

	formatter := service.NewOutputFormatter()
	formatter.EnableColor(useColor)
	formatter.EnableSuggestions(showSuggestions)

	useCase, err := app.NewCheckUseCaseBuilder().
		WithService(service.NewCheckServiceWithProgress(pm).WithLogger(logger)).
		WithFormatter(formatter).
		Build()
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	response, err := useCase.Execute(context.Background(), req)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	return checkExitStatus(response, checkDryRun, checkStrict)
}

// resolveOutputSettings seeds the output options from the effective
// configuration, then lets flags explicitly set on the command line win
// over the file values.
func resolveOutputSettings(flags *pflag.FlagSet, out config.OutputConfig) (format string, color, suggestions bool) {
	format = out.Format
	if flags.Changed("format") {
		format = checkOutputFormat
	}
	suggestions = out.ShowSuggestions
	if flags.Changed("verbose") {
		suggestions = checkVerbose
	}
	color = out.Color && !noColor
	return format, color, suggestions
}

// checkExitStatus maps a check response to the process exit status.
// Dry-run always passes; otherwise a failed result exits nonzero when
// fail_on_exceed is enabled or --strict forces it.
func checkExitStatus(response *domain.CheckResponse, dryRun, strict bool) error {
	if response.Result.Passed || dryRun {
		return nil
	}

	failOnExceed := true
	if v, ok := response.Config["fail_on_exceed"].(bool); ok {
		failOnExceed = v
	}
	if failOnExceed || strict {
		return &CheckExitError{Code: constants.ExitCodeFail, Message: ""}
	}
	return nil
}
