package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/mdtoken/internal/matcher"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectMarkdownFiles collects markdown files from paths. Directories
// are walked recursively; excluded directories are pruned early so large
// ignored trees are never entered.
func (h *FileHelper) CollectMarkdownFiles(paths []string, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.IsValidMarkdownFile(path) && !matcher.Excluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(path, filePath)
			if relErr != nil {
				rel = filePath
			}
			rel = matcher.Normalize(rel)

			if info.IsDir() {
				if filePath != path && matcher.Excluded(rel, excludePatterns) {
					return filepath.SkipDir
				}
				return nil
			}

			if h.IsValidMarkdownFile(filePath) && !matcher.Excluded(rel, excludePatterns) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsValidMarkdownFile checks whether a file has a markdown extension
func (h *FileHelper) IsValidMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return true
	}
	return false
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
