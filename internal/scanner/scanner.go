package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jenian/envcheck/internal/languages"
)

// FileInfo contains information about a file to be scanned
type FileInfo struct {
	Path     string
	Language languages.Language
}

// Scanner handles file discovery and filtering
type Scanner struct {
	excludeDirs  map[string]bool // Directory names to exclude (e.g., "node_modules")
	excludePaths []string        // Relative paths to exclude (e.g., "src/config", "k8s/*")
	excludeGlobs []glob.Glob
	includeGlobs []glob.Glob
	globErr      error
}

// NewScanner creates a new scanner with default exclusions
func NewScanner() *Scanner {
	return &Scanner{
		excludeDirs: map[string]bool{
			"node_modules": true,
			"vendor":       true,
			".git":         true,
			"build":        true,
			"dist":         true,
			"bin":          true,
			"out":          true,
			".next":        true,
			".cache":       true,
			".serverless":  true,
			"__pycache__":  true,
			"target":       true,
		},
	}
}

// SetExcludeGlobs sets glob patterns to exclude
func (s *Scanner) SetExcludeGlobs(patterns []string) error {
	globs, err := compileGlobs(patterns)
	if err != nil {
		s.globErr = err
		return err
	}
	s.excludeGlobs = globs
	return nil
}

// SetIncludeGlobs sets glob patterns to include (overrides excludes)
func (s *Scanner) SetIncludeGlobs(patterns []string) error {
	globs, err := compileGlobs(patterns)
	if err != nil {
		s.globErr = err
		return err
	}
	s.includeGlobs = globs
	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// AddExcludeDirs adds additional directories to exclude from scanning
// Can be directory names (e.g., "config") or paths (e.g., "src/config")
func (s *Scanner) AddExcludeDirs(dirs []string) {
	for _, dir := range dirs {
		dir = strings.TrimSuffix(filepath.ToSlash(dir), "/")
		if dir == "" {
			continue
		}
		// If it contains a path separator, treat it as a path pattern
		if strings.Contains(dir, "/") {
			s.excludePaths = append(s.excludePaths, dir)
		} else {
			s.excludeDirs[dir] = true
		}
	}
}

// matchesGlob checks the base name and the slash-separated relative path
func matchesGlob(relPath string, globs []glob.Glob) bool {
	base := filepath.Base(relPath)
	for _, g := range globs {
		if g.Match(base) || g.Match(relPath) {
			return true
		}
	}
	return false
}

// shouldInclude checks if a file should be included based on include/exclude globs
func (s *Scanner) shouldInclude(relPath string) bool {
	// If include globs are specified, file must match at least one
	if len(s.includeGlobs) > 0 {
		return matchesGlob(relPath, s.includeGlobs)
	}
	if len(s.excludeGlobs) > 0 {
		return !matchesGlob(relPath, s.excludeGlobs)
	}
	return true
}

// isExcludedPath checks if a relative directory path is within an ignored folder
func (s *Scanner) isExcludedPath(relPath string) bool {
	for _, excludePath := range s.excludePaths {
		// Support patterns like "src/config/*"
		prefix := strings.TrimSuffix(excludePath, "/*")
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}
	return false
}

// Scan recursively walks a directory and returns the files that have a recognizer
func (s *Scanner) Scan(rootPath string) ([]FileInfo, error) {
	if s.globErr != nil {
		return nil, s.globErr
	}

	var files []FileInfo
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path == rootPath {
				return nil
			}
			if s.excludeDirs[d.Name()] || s.isExcludedPath(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		lang := languages.Detect(path)
		if lang == languages.LanguageUnknown {
			return nil
		}

		if !s.shouldInclude(relPath) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     path,
			Language: lang,
		})
		return nil
	})

	return files, err
}
