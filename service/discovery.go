package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/mdtoken/internal/matcher"
)

// markdownExtensions are the file extensions treated as markdown
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
}

// skippedDirNames are directory basenames never worth walking
var skippedDirNames = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// FileDiscovererImpl implements the FileDiscoverer interface for
// markdown trees
type FileDiscovererImpl struct{}

// NewFileDiscoverer creates a new file discoverer
func NewFileDiscoverer() *FileDiscovererImpl {
	return &FileDiscovererImpl{}
}

// DiscoverFiles resolves paths into the ordered list of markdown files to
// check. Directories are walked recursively for files matching the include
// patterns; explicit files keep their argument order and only go through
// the extension and exclusion filters. Missing paths and unreadable
// subtrees become warnings, not errors.
func (d *FileDiscovererImpl) DiscoverFiles(paths []string, include, exclude []string, respectGitignore bool) ([]string, []string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if len(include) == 0 {
		include = []string{"**/*.md"}
	}

	var files []string
	var warnings []string
	seen := make(map[string]struct{})

	add := func(path string) {
		key := matcher.Normalize(path)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("path not found: %s", p))
			continue
		}

		if info.IsDir() {
			found, walkWarnings := d.walkDir(p, include, exclude, respectGitignore)
			warnings = append(warnings, walkWarnings...)
			for _, f := range found {
				add(f)
			}
			continue
		}

		if !IsMarkdownFile(p) {
			warnings = append(warnings, fmt.Sprintf("skipping non-markdown file: %s", p))
			continue
		}
		if matcher.Excluded(p, exclude) {
			continue
		}
		add(p)
	}

	return files, warnings, nil
}

// FileExists checks whether a file exists and is not a directory
func (d *FileDiscovererImpl) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsMarkdownFile reports whether path has a markdown extension
func IsMarkdownFile(path string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(path))]
}

// walkDir collects matching markdown files under root. Include and
// exclude patterns are matched against paths relative to root, the way
// the patterns are written in configuration.
func (d *FileDiscovererImpl) walkDir(root string, include, exclude []string, respectGitignore bool) ([]string, []string) {
	var cache *gitIgnoreCache
	if respectGitignore {
		cache = newGitIgnoreCache(root)
	}

	var found []string
	var warnings []string

	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot access %s: %v", path, err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = matcher.Normalize(rel)

		if info.IsDir() {
			if path != root {
				if skippedDirNames[info.Name()] {
					return filepath.SkipDir
				}
				if matcher.Excluded(rel, exclude) {
					return filepath.SkipDir
				}
			}
			if cache != nil {
				absPath, _ := filepath.Abs(path)
				cache.tryLoad(absPath)
				if path != root && cache.ignored(absPath) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !IsMarkdownFile(path) {
			return nil
		}
		if !matchesInclude(rel, include) {
			return nil
		}
		if matcher.Excluded(rel, exclude) {
			return nil
		}
		if cache != nil {
			absPath, _ := filepath.Abs(path)
			if cache.ignored(absPath) {
				return nil
			}
		}

		found = append(found, path)
		return nil
	})

	sort.Strings(found)
	return found, warnings
}

// matchesInclude reports whether rel matches any include pattern. A
// pattern without a leading "**/" also matches at any depth, mirroring
// recursive glob semantics.
func matchesInclude(rel string, include []string) bool {
	for _, pattern := range include {
		pattern = matcher.Normalize(pattern)
		if matcher.Match(pattern, rel) {
			return true
		}
		if !strings.HasPrefix(pattern, "**/") && matcher.Match("**/"+pattern, rel) {
			return true
		}
	}
	return false
}

// gitIgnoreCache tracks nested .gitignore files while walking a tree.
// Gitignore files are loaded lazily as their directories are visited,
// and a path is checked against every gitignore between it and the root.
type gitIgnoreCache struct {
	root    string
	cache   map[string]*ignore.GitIgnore
	visited map[string]struct{}
}

func newGitIgnoreCache(root string) *gitIgnoreCache {
	absRoot, _ := filepath.Abs(root)
	c := &gitIgnoreCache{
		root:    absRoot,
		cache:   make(map[string]*ignore.GitIgnore),
		visited: make(map[string]struct{}),
	}
	c.tryLoad(absRoot)
	return c
}

// tryLoad compiles dir's .gitignore if the directory has not been
// visited yet. Directories without a .gitignore stay out of the cache.
func (c *gitIgnoreCache) tryLoad(dir string) {
	if _, visited := c.visited[dir]; visited {
		return
	}
	c.visited[dir] = struct{}{}

	if gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		c.cache[dir] = gi
	}
}

// ignored checks absPath against every cached gitignore from its parent
// directory up to the cache root
func (c *gitIgnoreCache) ignored(absPath string) bool {
	if len(c.cache) == 0 {
		return false
	}

	dir := filepath.Dir(absPath)
	for {
		if gi, ok := c.cache[dir]; ok {
			rel, _ := filepath.Rel(dir, absPath)
			if gi.MatchesPath(rel) {
				return true
			}
		}
		if dir == c.root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}
