package service

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/config"
	"github.com/ludo-technologies/mdtoken/internal/enforcer"
	"github.com/ludo-technologies/mdtoken/internal/version"
)

// maxWorkers caps parallel token counting regardless of configuration
const maxWorkers = 16

// CheckServiceImpl implements the CheckService interface
type CheckServiceImpl struct {
	discoverer domain.FileDiscoverer
	progress   domain.ProgressManager
	logger     *zap.Logger
}

// NewCheckService creates a new check service implementation
func NewCheckService() *CheckServiceImpl {
	return &CheckServiceImpl{
		discoverer: NewFileDiscoverer(),
		logger:     zap.NewNop(),
	}
}

// NewCheckServiceWithProgress creates a new check service with progress
// reporting
func NewCheckServiceWithProgress(pm domain.ProgressManager) *CheckServiceImpl {
	svc := NewCheckService()
	svc.progress = pm
	return svc
}

// WithLogger sets the logger used for debug output
func (s *CheckServiceImpl) WithLogger(logger *zap.Logger) *CheckServiceImpl {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Check evaluates the requested paths against the configured limits
func (s *CheckServiceImpl) Check(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	startTime := time.Now()

	cfg, err := config.LoadConfig(req.ConfigPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	cfg = MergeConfig(cfg, req)
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}

	limitCfg, err := cfg.ToLimitConfig()
	if err != nil {
		return nil, err
	}
	tokenCounter, err := cfg.BuildCounter()
	if err != nil {
		return nil, domain.NewConfigError("invalid counter configuration", err)
	}

	paths, warnings, err := s.discoverer.DiscoverFiles(req.Paths, cfg.Include, cfg.Exclude, cfg.RespectGitignore)
	if err != nil {
		return nil, domain.NewFileNotFoundError("file discovery failed", err)
	}
	s.logger.Debug("discovered files",
		zap.Int("count", len(paths)),
		zap.Strings("roots", req.Paths))

	files, readWarnings := s.readFiles(paths)
	warnings = append(warnings, readWarnings...)

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil {
		task = s.progress.StartTask("Counting tokens", len(files))
	}
	defer task.Complete()

	eng := enforcer.New(limitCfg, tokenCounter)
	result, err := eng.Check(ctx, files, enforcer.Options{
		Workers:    s.workerCount(cfg),
		OnProgress: func() { task.Increment(1) },
	})
	if err != nil {
		return nil, domain.NewAnalysisError("check failed", err)
	}

	s.logger.Debug("check finished",
		zap.Int("files", result.TotalFiles),
		zap.Int("tokens", result.TotalTokens),
		zap.Int("violations", len(result.Violations)),
		zap.Bool("passed", result.Passed),
		zap.Duration("elapsed", time.Since(startTime)))

	return &domain.CheckResponse{
		Result:      *result,
		Warnings:    warnings,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
		Config:      configSummary(cfg, tokenCounter),
		DurationMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

// readFiles loads the content of each discovered file. Unreadable files
// become warnings rather than failing the run.
func (s *CheckServiceImpl) readFiles(paths []string) ([]domain.SourceFile, []string) {
	files := make([]domain.SourceFile, 0, len(paths))
	var warnings []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v", p, err))
			continue
		}
		files = append(files, domain.SourceFile{Path: p, Content: string(data)})
	}
	return files, warnings
}

// workerCount picks the parallelism for token counting. Zero in the
// configuration selects a value from the CPU count.
func (s *CheckServiceImpl) workerCount(cfg *config.Config) int {
	workers := cfg.Performance.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return workers
}

// configSummary captures the effective settings for the response so
// callers can echo them without reloading the configuration
func configSummary(cfg *config.Config, tc domain.TokenCounter) map[string]any {
	summary := map[string]any{
		"default_limit":  cfg.DefaultLimit,
		"fail_on_exceed": cfg.FailOnExceed,
		"warn_threshold": cfg.WarnThreshold,
		"counter":        tc.Name(),
		"rules":          len(cfg.Limits),
	}
	if cfg.TotalLimit != nil {
		summary["total_limit"] = *cfg.TotalLimit
	}
	return summary
}
