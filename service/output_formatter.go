package service

import (
	"io"
	"strings"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/config"
	"github.com/ludo-technologies/mdtoken/internal/reporter"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	noColor         bool
	showSuggestions bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{showSuggestions: true}
}

// EnableColor controls whether text output carries ANSI colors
func (f *OutputFormatterImpl) EnableColor(enabled bool) {
	f.noColor = !enabled
}

// EnableSuggestions controls whether text output includes remediation
// hints for violations
func (f *OutputFormatterImpl) EnableSuggestions(enabled bool) {
	f.showSuggestions = enabled
}

// Format converts the response into the requested output format
func (f *OutputFormatterImpl) Format(response *domain.CheckResponse, format domain.OutputFormat) (string, error) {
	var b strings.Builder
	if err := f.Write(response, format, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write formats and writes the response to the writer
func (f *OutputFormatterImpl) Write(response *domain.CheckResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewInvalidInputError("response cannot be nil", nil)
	}

	cfg := config.DefaultConfig()
	cfg.Output.Format = string(format)

	r, err := reporter.NewCheckReporter(cfg, writer)
	if err != nil {
		return domain.NewOutputError("failed to build reporter", err)
	}
	r.EnableColor(!f.noColor)
	r.EnableSuggestions(f.showSuggestions)

	if err := r.Report(&response.Result); err != nil {
		return err
	}

	// Discovery warnings only belong in the human readable output; the
	// structured formats carry them inside the report itself.
	if format == domain.OutputFormatText && len(response.Warnings) > 0 {
		for _, w := range response.Warnings {
			if _, err := io.WriteString(writer, "Warning: "+w+"\n"); err != nil {
				return domain.NewOutputError("failed to write warnings", err)
			}
		}
	}
	return nil
}
