// Package enforcer evaluates discovered files against configured token
// limits and aggregates the outcome of a check pass.
package enforcer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/matcher"
)

// Options tune how a check pass executes
type Options struct {
	// Workers caps concurrent token counting. Values below two keep
	// the pass single threaded.
	Workers int

	// OnProgress, when set, is called once per counted file
	OnProgress func()
}

// Enforcer checks files against the limits in a validated configuration.
// Each Check call is a pure function of its inputs, so one Enforcer is
// safe to share across goroutines.
type Enforcer struct {
	cfg     *domain.LimitConfig
	match   *matcher.Matcher
	counter domain.TokenCounter
}

// New builds an Enforcer over a validated configuration and a counter
func New(cfg *domain.LimitConfig, counter domain.TokenCounter) *Enforcer {
	return &Enforcer{
		cfg:     cfg,
		match:   matcher.New(cfg),
		counter: counter,
	}
}

// evaluation carries one file through the counting phase. Results are
// written back by index so parallel counting cannot reorder the output.
type evaluation struct {
	file     domain.SourceFile
	resolved domain.ResolvedLimit
	tokens   int
	err      error
}

// Check evaluates files in input order and aggregates the outcome.
// Excluded files are skipped even when the caller failed to filter them.
// Files whose content cannot be counted land in Unevaluated and stay out
// of the totals; they never abort the run.
func (e *Enforcer) Check(ctx context.Context, files []domain.SourceFile, opts Options) (*domain.EnforcementResult, error) {
	evals := make([]evaluation, 0, len(files))
	for _, f := range files {
		if e.match.IsExcluded(f.Path) {
			continue
		}
		evals = append(evals, evaluation{file: f, resolved: e.match.Resolve(f.Path)})
	}

	if err := e.countAll(ctx, evals, opts); err != nil {
		return nil, err
	}

	result := &domain.EnforcementResult{
		TotalLimit: e.cfg.TotalLimit,
		Checks:     make([]domain.FileCheck, 0, len(evals)),
	}
	for i := range evals {
		ev := &evals[i]
		if ev.err != nil {
			result.Unevaluated = append(result.Unevaluated, domain.UnevaluatedFile{
				Path:   ev.file.Path,
				Reason: ev.err.Error(),
			})
			continue
		}
		check := domain.FileCheck{
			Path:    ev.file.Path,
			Tokens:  ev.tokens,
			Limit:   ev.resolved.Limit,
			Pattern: ev.resolved.Pattern,
			Status:  e.classify(ev.tokens, ev.resolved.Limit),
		}
		result.TotalFiles++
		result.TotalTokens += ev.tokens
		result.Checks = append(result.Checks, check)
		if check.Status == domain.StatusViolation {
			result.Violations = append(result.Violations, domain.NewViolation(check))
		}
	}

	if e.cfg.TotalLimit > 0 && result.TotalTokens > e.cfg.TotalLimit {
		result.TotalLimitExceeded = true
	}
	result.Passed = len(result.Violations) == 0 && !result.TotalLimitExceeded
	return result, nil
}

// countAll fills in tokens and err for every evaluation
func (e *Enforcer) countAll(ctx context.Context, evals []evaluation, opts Options) error {
	if opts.Workers > 1 && len(evals) > 1 {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range evals {
			ev := &evals[i]
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				ev.tokens, ev.err = e.counter.Count(ev.file.Content)
				if opts.OnProgress != nil {
					opts.OnProgress()
				}
				return nil
			})
		}
		return g.Wait()
	}

	for i := range evals {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := &evals[i]
		ev.tokens, ev.err = e.counter.Count(ev.file.Content)
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}
	return nil
}

// classify applies the status thresholds. A count equal to the limit is
// not a violation, only strictly exceeding it is.
func (e *Enforcer) classify(tokens, limit int) domain.CheckStatus {
	if tokens > limit {
		return domain.StatusViolation
	}
	if float64(tokens) >= e.cfg.WarnThreshold*float64(limit) {
		return domain.StatusApproaching
	}
	return domain.StatusPass
}
