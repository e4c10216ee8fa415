// Package reporter renders enforcement results as terminal text and
// serializable reports
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/config"
	"github.com/ludo-technologies/mdtoken/internal/suggest"
	"github.com/ludo-technologies/mdtoken/internal/version"
)

// ANSI escape codes for terminal output
const (
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorBlue   = "\033[94m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// maxSuggestionsShown caps the remediation hints printed per violation
const maxSuggestionsShown = 3

// usageBuckets are the summary distribution ranges, ordered
var usageBuckets = []string{"<=50%", "51-75%", "76-90%", "91-100%", ">100%"}

// countPrinter formats token totals with thousands separators
var countPrinter = message.NewPrinter(language.English)

// CheckReport is the serializable form of one enforcement run
type CheckReport struct {
	Summary     ReportSummary            `json:"summary" yaml:"summary"`
	Results     []FileResult             `json:"results" yaml:"results"`
	Unevaluated []domain.UnevaluatedFile `json:"unevaluated,omitempty" yaml:"unevaluated,omitempty"`
	Warnings    []ReportWarning          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata    ReportMetadata           `json:"metadata" yaml:"metadata"`
}

// FileResult is a per-file evaluation in serializable form
type FileResult struct {
	Path    string  `json:"path" yaml:"path"`
	Tokens  int     `json:"tokens" yaml:"tokens"`
	Limit   int     `json:"limit" yaml:"limit"`
	Pattern string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Status  string  `json:"status" yaml:"status"`
	Usage   float64 `json:"usage_percent" yaml:"usage_percent"`
}

// ReportSummary aggregates the statistics of one run
type ReportSummary struct {
	FilesChecked       int                `json:"files_checked" yaml:"files_checked"`
	TotalTokens        int                `json:"total_tokens" yaml:"total_tokens"`
	AverageTokens      float64            `json:"average_tokens" yaml:"average_tokens"`
	MaxTokens          int                `json:"max_tokens" yaml:"max_tokens"`
	MinTokens          int                `json:"min_tokens" yaml:"min_tokens"`
	StatusDistribution StatusDistribution `json:"status_distribution" yaml:"status_distribution"`
	UsageDistribution  map[string]int     `json:"usage_distribution" yaml:"usage_distribution"`
	WorstOffenders     []FileResult       `json:"worst_offenders,omitempty" yaml:"worst_offenders,omitempty"`
	Violations         int                `json:"violations" yaml:"violations"`
	TotalLimit         int                `json:"total_limit,omitempty" yaml:"total_limit,omitempty"`
	TotalLimitExceeded bool               `json:"total_limit_exceeded" yaml:"total_limit_exceeded"`
	Passed             bool               `json:"passed" yaml:"passed"`
}

// StatusDistribution counts files per classification
type StatusDistribution struct {
	Pass        int `json:"pass" yaml:"pass"`
	Approaching int `json:"approaching" yaml:"approaching"`
	Violation   int `json:"violation" yaml:"violation"`
}

// ReportWarning flags a condition worth surfacing alongside the results
type ReportWarning struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message" yaml:"message"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Tokens  int    `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// ReportMetadata records the provenance of a serialized report
type ReportMetadata struct {
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// CheckReporter renders enforcement results in the configured output format
type CheckReporter struct {
	config          *config.Config
	writer          io.Writer
	useColor        bool
	showSuggestions bool
}

// NewCheckReporter creates a reporter writing to the given writer
func NewCheckReporter(cfg *config.Config, writer io.Writer) (*CheckReporter, error) {
	if cfg == nil {
		return nil, errors.New("configuration cannot be nil")
	}
	if writer == nil {
		return nil, errors.New("writer cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &CheckReporter{
		config:          cfg,
		writer:          writer,
		useColor:        cfg.Output.Color,
		showSuggestions: cfg.Output.ShowSuggestions,
	}, nil
}

// GetWriter returns the writer the reporter renders to
func (r *CheckReporter) GetWriter() io.Writer {
	return r.writer
}

// EnableColor overrides whether ANSI colors are emitted
func (r *CheckReporter) EnableColor(enabled bool) {
	r.useColor = enabled
}

// EnableSuggestions overrides whether remediation hints are printed for
// violations in text output
func (r *CheckReporter) EnableSuggestions(enabled bool) {
	r.showSuggestions = enabled
}

// Report renders the result in the configured output format
func (r *CheckReporter) Report(result *domain.EnforcementResult) error {
	switch domain.OutputFormat(r.config.Output.Format) {
	case domain.OutputFormatJSON:
		return r.writeJSON(result)
	case domain.OutputFormatYAML:
		return r.writeYAML(result)
	case domain.OutputFormatCSV:
		return r.writeCSV(result)
	case domain.OutputFormatText:
		return r.WriteText(result)
	default:
		return domain.NewUnsupportedFormatError(r.config.Output.Format)
	}
}

// GenerateReport builds the serializable report for a run
func (r *CheckReporter) GenerateReport(result *domain.EnforcementResult) *CheckReport {
	return BuildReport(result)
}

// BuildReport assembles the serializable report from an enforcement result
func BuildReport(result *domain.EnforcementResult) *CheckReport {
	report := &CheckReport{
		Results:     make([]FileResult, 0, len(result.Checks)),
		Unevaluated: result.Unevaluated,
		Metadata: ReportMetadata{
			GeneratedAt: time.Now().Format(time.RFC3339),
			Version:     version.Version,
		},
	}

	summary := ReportSummary{
		FilesChecked:       result.TotalFiles,
		TotalTokens:        result.TotalTokens,
		Violations:         len(result.Violations),
		TotalLimit:         result.TotalLimit,
		TotalLimitExceeded: result.TotalLimitExceeded,
		Passed:             result.Passed,
		UsageDistribution:  make(map[string]int, len(usageBuckets)),
	}
	for _, bucket := range usageBuckets {
		summary.UsageDistribution[bucket] = 0
	}

	if len(result.Checks) > 0 {
		summary.MinTokens = result.Checks[0].Tokens
	}
	for _, check := range result.Checks {
		usage := usagePercent(check)
		report.Results = append(report.Results, FileResult{
			Path:    check.Path,
			Tokens:  check.Tokens,
			Limit:   check.Limit,
			Pattern: check.Pattern,
			Status:  string(check.Status),
			Usage:   usage,
		})

		if check.Tokens > summary.MaxTokens {
			summary.MaxTokens = check.Tokens
		}
		if check.Tokens < summary.MinTokens {
			summary.MinTokens = check.Tokens
		}

		switch check.Status {
		case domain.StatusPass:
			summary.StatusDistribution.Pass++
		case domain.StatusApproaching:
			summary.StatusDistribution.Approaching++
		case domain.StatusViolation:
			summary.StatusDistribution.Violation++
		}
		summary.UsageDistribution[usageBucket(usage)]++
	}

	if result.TotalFiles > 0 {
		summary.AverageTokens = float64(result.TotalTokens) / float64(result.TotalFiles)
	}
	summary.WorstOffenders = worstOffenders(report.Results, maxSuggestionsShown)

	report.Summary = summary
	report.Warnings = buildWarnings(result)
	return report
}

// WriteText renders the human-readable terminal report
func (r *CheckReporter) WriteText(result *domain.EnforcementResult) error {
	var b strings.Builder

	if len(result.Violations) > 0 {
		b.WriteString(r.colorize(colorRed,
			fmt.Sprintf("✗ Found %d file(s) exceeding token limits:", len(result.Violations))))
		b.WriteString("\n\n")

		for i, v := range result.Violations {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.colorize(colorBold, v.Path)))
			b.WriteString(fmt.Sprintf("   Tokens: %s / %s\n",
				r.colorize(colorRed, strconv.Itoa(v.Tokens)),
				r.colorize(colorYellow, strconv.Itoa(v.Limit))))
			b.WriteString(fmt.Sprintf("   Over by: %s tokens (%s)\n",
				r.colorize(colorRed, strconv.Itoa(v.Excess)),
				r.colorize(colorRed, fmt.Sprintf("%.1f%%", v.PercentageOver))))

			if r.showSuggestions {
				b.WriteString(fmt.Sprintf("   %s\n", r.colorize(colorBlue, "Suggestions:")))
				for _, hint := range topSuggestions(v) {
					b.WriteString(fmt.Sprintf("   • %s\n", hint))
				}
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(r.colorize(colorGreen, "✓ All files within token limits!"))
		b.WriteString("\n\n")
	}

	if approaching := approachingChecks(result); len(approaching) > 0 {
		b.WriteString(r.colorize(r.statusColor(domain.StatusApproaching),
			fmt.Sprintf("⚠ %d file(s) approaching their token limit:", len(approaching))))
		b.WriteString("\n")
		for _, c := range approaching {
			b.WriteString(fmt.Sprintf("  - %s: %s / %s (%.0f%%)\n",
				c.Path, strconv.Itoa(c.Tokens), strconv.Itoa(c.Limit), usagePercent(c)))
		}
		b.WriteString("\n")
	}

	if len(result.Unevaluated) > 0 {
		b.WriteString(r.colorize(colorYellow,
			fmt.Sprintf("⚠ Skipped %d file(s) that could not be counted:", len(result.Unevaluated))))
		b.WriteString("\n")
		for _, u := range result.Unevaluated {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", u.Path, u.Reason))
		}
		b.WriteString("\n")
	}

	if result.TotalLimitExceeded {
		b.WriteString(r.colorize(colorYellow,
			fmt.Sprintf("⚠ Total tokens (%s) exceeds total_limit (%s)",
				formatCount(result.TotalTokens), formatCount(result.TotalLimit))))
		b.WriteString("\n\n")
	}

	b.WriteString(r.colorize(colorBold, "Summary:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Files checked: %d\n", result.TotalFiles))
	b.WriteString(fmt.Sprintf("  Total tokens: %s\n", formatCount(result.TotalTokens)))
	b.WriteString(fmt.Sprintf("  Violations: %d\n", len(result.Violations)))

	status := r.colorize(colorGreen, "PASSED")
	if !result.Passed {
		status = r.colorize(colorRed, "FAILED")
	}
	b.WriteString(fmt.Sprintf("  Status: %s\n", status))

	_, err := io.WriteString(r.writer, b.String())
	return err
}

func (r *CheckReporter) writeJSON(result *domain.EnforcementResult) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.GenerateReport(result))
}

func (r *CheckReporter) writeYAML(result *domain.EnforcementResult) error {
	data, err := yaml.Marshal(r.GenerateReport(result))
	if err != nil {
		return err
	}
	_, err = r.writer.Write(data)
	return err
}

func (r *CheckReporter) writeCSV(result *domain.EnforcementResult) error {
	report := r.GenerateReport(result)

	w := csv.NewWriter(r.writer)
	if err := w.Write([]string{"Path", "Tokens", "Limit", "Pattern", "Status", "UsagePercent"}); err != nil {
		return err
	}
	for _, res := range report.Results {
		record := []string{
			res.Path,
			strconv.Itoa(res.Tokens),
			strconv.Itoa(res.Limit),
			res.Pattern,
			res.Status,
			strconv.FormatFloat(res.Usage, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatCheckBrief returns a one-line summary of a run, used by watch mode
func FormatCheckBrief(result *domain.EnforcementResult) string {
	if result == nil || result.TotalFiles == 0 {
		return "No files checked"
	}

	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	return fmt.Sprintf("%s: %d files, %s tokens, %d violation(s)",
		status, result.TotalFiles, formatCount(result.TotalTokens), len(result.Violations))
}

func (r *CheckReporter) colorize(code, text string) string {
	if !r.useColor {
		return text
	}
	return code + text + colorReset
}

// statusColor maps a classification to its terminal color
func (r *CheckReporter) statusColor(status domain.CheckStatus) string {
	switch status {
	case domain.StatusViolation:
		return colorRed
	case domain.StatusApproaching:
		return colorYellow
	case domain.StatusPass:
		return colorGreen
	default:
		return colorReset
	}
}

// approachingChecks filters the per-file results down to those near
// their limit, keeping input order
func approachingChecks(result *domain.EnforcementResult) []domain.FileCheck {
	var checks []domain.FileCheck
	for _, c := range result.Checks {
		if c.Status == domain.StatusApproaching {
			checks = append(checks, c)
		}
	}
	return checks
}

func topSuggestions(v domain.Violation) []string {
	hints := suggest.ForViolation(v)
	if len(hints) > maxSuggestionsShown {
		hints = hints[:maxSuggestionsShown]
	}
	return hints
}

func buildWarnings(result *domain.EnforcementResult) []ReportWarning {
	var warnings []ReportWarning

	if result.TotalLimitExceeded {
		warnings = append(warnings, ReportWarning{
			Type: "total_limit_exceeded",
			Message: fmt.Sprintf("Total tokens (%d) exceeds total_limit (%d)",
				result.TotalTokens, result.TotalLimit),
		})
	}
	for _, check := range result.Checks {
		if check.Status == domain.StatusApproaching {
			warnings = append(warnings, ReportWarning{
				Type: "approaching_limit",
				Message: fmt.Sprintf("%s is at %.1f%% of its %d token limit",
					check.Path, usagePercent(check), check.Limit),
				Path:   check.Path,
				Tokens: check.Tokens,
			})
		}
	}
	for _, u := range result.Unevaluated {
		warnings = append(warnings, ReportWarning{
			Type:    "unevaluated_file",
			Message: u.Reason,
			Path:    u.Path,
		})
	}
	return warnings
}

func worstOffenders(results []FileResult, limit int) []FileResult {
	if len(results) == 0 {
		return nil
	}
	sorted := make([]FileResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tokens > sorted[j].Tokens
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func usagePercent(check domain.FileCheck) float64 {
	if check.Limit <= 0 {
		return 0
	}
	return float64(check.Tokens) / float64(check.Limit) * 100.0
}

func usageBucket(pct float64) string {
	switch {
	case pct <= 50:
		return usageBuckets[0]
	case pct <= 75:
		return usageBuckets[1]
	case pct <= 90:
		return usageBuckets[2]
	case pct <= 100:
		return usageBuckets[3]
	default:
		return usageBuckets[4]
	}
}

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
