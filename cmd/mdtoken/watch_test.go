package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestCollectWatchDirs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"docs", "docs/deep", "node_modules/pkg", ".git/objects"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", sub, err)
		}
	}

	dirs, err := collectWatchDirs(dir)
	if err != nil {
		t.Fatalf("collectWatchDirs failed: %v", err)
	}

	want := map[string]bool{
		dir: true,
		filepath.Join(dir, "docs"):         true,
		filepath.Join(dir, "docs", "deep"): true,
	}
	if len(dirs) != len(want) {
		t.Fatalf("Expected %d dirs, got %d: %v", len(want), len(dirs), dirs)
	}
	for _, d := range dirs {
		if !want[d] {
			t.Errorf("Unexpected watched dir: %s", d)
		}
	}
}

func TestCollectWatchDirsFileArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	if err := os.WriteFile(path, []byte("# test"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	dirs, err := collectWatchDirs(path)
	if err != nil {
		t.Fatalf("collectWatchDirs failed: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != dir {
		t.Errorf("Expected parent directory, got %v", dirs)
	}
}

func TestIsMarkdownEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"markdown write", fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, true},
		{"markdown create", fsnotify.Event{Name: "docs/new.md", Op: fsnotify.Create}, true},
		{"markdown remove", fsnotify.Event{Name: "old.md", Op: fsnotify.Remove}, true},
		{"markdown chmod only", fsnotify.Event{Name: "README.md", Op: fsnotify.Chmod}, false},
		{"non-markdown write", fsnotify.Event{Name: "main.go", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMarkdownEvent(tt.event); got != tt.want {
				t.Errorf("isMarkdownEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
