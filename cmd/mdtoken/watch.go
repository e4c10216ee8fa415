package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/reporter"
	"github.com/ludo-technologies/mdtoken/service"
)

// watchDebounce batches rapid editor events into a single re-check
const watchDebounce = 300 * time.Millisecond

// watchSkipDirs are directory basenames never worth watching
var watchSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"build":        true,
	"dist":         true,
}

var (
	watchConfigPath string
	watchVerbose    bool
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-check markdown files whenever they change",
		Long: `Watch markdown trees and re-run the token limit check whenever a
markdown file changes. Each run prints a one-line summary; use --verbose
for the full report.

Examples:
  # Watch the current directory
  mdtoken watch

  # Watch specific trees
  mdtoken watch docs/ notes/`,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false,
		"Print the full report on every run")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range roots {
		dirs, err := collectWatchDirs(root)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}
		for _, dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %d path(s) for markdown changes. Press Ctrl+C to stop.\n", len(roots))
	runWatchCheck(ctx, roots)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories need watching before events inside
			// them can arrive
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !watchSkipDirs[filepath.Base(event.Name)] {
						_ = watcher.Add(event.Name)
					}
					continue
				}
			}
			if !isMarkdownEvent(event) {
				continue
			}
			logger.Debug("markdown change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-timerC:
			runWatchCheck(ctx, roots)
		}
	}
}

// isMarkdownEvent reports whether a filesystem event concerns a markdown
// file in a way that changes check results
func isMarkdownEvent(event fsnotify.Event) bool {
	if !service.IsMarkdownFile(event.Name) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}

// runWatchCheck runs one check pass and prints its outcome
func runWatchCheck(ctx context.Context, roots []string) {
	useColor := !noColor && service.ColorsEnabled()

	var out io.Writer = os.Stdout
	req := domain.CheckRequest{
		Paths:        roots,
		OutputFormat: domain.OutputFormatText,
		OutputWriter: out,
		ConfigPath:   watchConfigPath,
		NoColor:      !useColor,
	}

	svc := service.NewCheckService().WithLogger(logger)
	response, err := svc.Check(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		return
	}

	timestamp := time.Now().Format("15:04:05")
	if watchVerbose {
		fmt.Printf("--- %s ---\n", timestamp)
		formatter := service.NewOutputFormatter()
		formatter.EnableColor(useColor)
		if err := formatter.Write(response, domain.OutputFormatText, out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		}
		return
	}
	fmt.Printf("[%s] %s\n", timestamp, reporter.FormatCheckBrief(&response.Result))
}

// collectWatchDirs lists root and every subdirectory worth watching
func collectWatchDirs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{filepath.Dir(root)}, nil
	}

	var dirs []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && watchSkipDirs[info.Name()] {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
