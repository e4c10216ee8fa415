package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ludo-technologies/mdtoken/internal/constants"
	"github.com/ludo-technologies/mdtoken/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version

	debugMode bool
	noColor   bool

	// logger is replaced with a real zap logger in the root
	// PersistentPreRunE
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		// Handle custom exit codes from check command
		if exitErr, ok := err.(*CheckExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Silently exit with the specified code (output already printed)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeError)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "mdtoken - token limit checker for markdown files",
		Long: `mdtoken keeps markdown files within configured token limits.
It counts tokens per file, compares them against pattern based limits from
.mdtokenrc.yaml, and exits nonzero when limits are exceeded, which makes it
suitable as a pre-commit hook or CI gate.`,
		Version:       Version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"Enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	cmd.AddCommand(checkCmd())
	cmd.AddCommand(initCmd())
	cmd.AddCommand(watchCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// setupLogger builds the process logger. Debug mode logs to stderr at
// debug level; otherwise logging stays off so command output remains
// machine readable.
func setupLogger() error {
	if !debugMode {
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = l
	return nil
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("%s version %s\n", constants.ToolName, version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
