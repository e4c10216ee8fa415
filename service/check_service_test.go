package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, ".mdtokenrc.yaml", content)
}

func TestCheckServicePassingRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 4000\nrespect_gitignore: false\n")
	testutil.WriteFile(t, dir, "README.md", testutil.MarkdownContent(3000))

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, resp.Result.TotalFiles)
	testutil.AssertEqual(t, 0, len(resp.Result.Violations))
	testutil.AssertTrue(t, resp.Result.Passed, "run should pass")
	testutil.AssertEqual(t, 3000, resp.Result.TotalTokens)
	testutil.AssertEqual(t, true, resp.Config["fail_on_exceed"])
}

func TestCheckServiceViolation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 1000\nrespect_gitignore: false\n")
	testutil.WriteFile(t, dir, "CLAUDE.md", testutil.MarkdownContent(2000))

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	testutil.AssertFalse(t, resp.Result.Passed, "run should fail")
	if len(resp.Result.Violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(resp.Result.Violations))
	}
	v := resp.Result.Violations[0]
	testutil.AssertEqual(t, 1000, v.Limit)
	testutil.AssertEqual(t, 1000, v.Excess)
}

func TestCheckServiceRuleResolution(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `
default_limit: 4000
limits:
  README.md: 100
respect_gitignore: false
`)
	testutil.WriteFile(t, dir, "README.md", testutil.MarkdownContent(500))
	testutil.WriteFile(t, dir, "other.md", testutil.MarkdownContent(500))

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	if len(resp.Result.Violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(resp.Result.Violations))
	}
	if !strings.HasSuffix(resp.Result.Violations[0].Path, "README.md") {
		t.Errorf("Expected README.md to violate its rule, got %s", resp.Result.Violations[0].Path)
	}
	testutil.AssertEqual(t, "README.md", resp.Result.Violations[0].Pattern)
}

func TestCheckServiceMetricFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 4000\nrespect_gitignore: false\n")
	testutil.WriteFile(t, dir, "good.md", testutil.MarkdownContent(100))
	// Invalid UTF-8 content cannot be counted
	binPath := filepath.Join(dir, "broken.md")
	if err := os.WriteFile(binPath, []byte{'#', ' ', 0xff, 0xfe, 0x00}, 0644); err != nil {
		t.Fatalf("Failed to write binary file: %v", err)
	}

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, resp.Result.TotalFiles)
	if len(resp.Result.Unevaluated) != 1 {
		t.Fatalf("Expected 1 unevaluated file, got %d", len(resp.Result.Unevaluated))
	}
	if !strings.HasSuffix(resp.Result.Unevaluated[0].Path, "broken.md") {
		t.Errorf("Unexpected unevaluated path: %s", resp.Result.Unevaluated[0].Path)
	}
	testutil.AssertTrue(t, resp.Result.Passed, "unevaluated files must not fail the run")
}

func TestCheckServiceFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 4000\nrespect_gitignore: false\n")
	testutil.WriteFile(t, dir, "a.md", testutil.MarkdownContent(600))
	testutil.WriteFile(t, dir, "b.md", testutil.MarkdownContent(600))

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
		TotalLimit: 1000,
	})
	testutil.AssertNoError(t, err)

	// Neither file violates its own limit, but together they bust the cap
	testutil.AssertEqual(t, 0, len(resp.Result.Violations))
	testutil.AssertTrue(t, resp.Result.TotalLimitExceeded, "total limit should be exceeded")
	testutil.AssertFalse(t, resp.Result.Passed, "run should fail on the aggregate cap")
}

func TestCheckServiceExplicitFileOrder(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 100\nrespect_gitignore: false\n")
	b := testutil.WriteFile(t, dir, "b.md", testutil.MarkdownContent(200))
	a := testutil.WriteFile(t, dir, "a.md", testutil.MarkdownContent(200))

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{b, a},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	if len(resp.Result.Violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(resp.Result.Violations))
	}
	// Explicit arguments keep their order, they are not sorted
	testutil.AssertEqual(t, b, resp.Result.Violations[0].Path)
	testutil.AssertEqual(t, a, resp.Result.Violations[1].Path)
}

func TestCheckServiceEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 4000\nrespect_gitignore: false\n")

	svc := NewCheckService()
	resp, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 0, resp.Result.TotalFiles)
	testutil.AssertEqual(t, 0, resp.Result.TotalTokens)
	testutil.AssertTrue(t, resp.Result.Passed, "empty input should pass")
}

func TestCheckServiceInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: -1\n")

	svc := NewCheckService()
	_, err := svc.Check(context.Background(), domain.CheckRequest{
		Paths:      []string{dir},
		ConfigPath: cfgPath,
	})
	testutil.AssertError(t, err)
}

func TestCheckServiceParallelDeterminism(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "default_limit: 100\nrespect_gitignore: false\n")
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md", "e.md"} {
		testutil.WriteFile(t, dir, name, testutil.MarkdownContent(200))
	}

	svc := NewCheckService()
	req := domain.CheckRequest{Paths: []string{dir}, ConfigPath: cfgPath, Workers: 4}

	first, err := svc.Check(context.Background(), req)
	testutil.AssertNoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Check(context.Background(), req)
		testutil.AssertNoError(t, err)
		if len(again.Result.Violations) != len(first.Result.Violations) {
			t.Fatal("Violation count changed between runs")
		}
		for j := range again.Result.Violations {
			if again.Result.Violations[j].Path != first.Result.Violations[j].Path {
				t.Fatal("Violation order changed between runs")
			}
		}
	}
}
