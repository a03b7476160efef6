package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are picked up from the scan root when present
var DefaultEnvFiles = []string{".env", ".env.local"}

// Snapshot returns the names of the variables set in environ (os.Environ() form)
func Snapshot(environ []string) map[string]bool {
	vars := make(map[string]bool, len(environ))
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		// Windows keeps per-drive entries like "=C:=C:\" in the block
		if key == "" {
			continue
		}
		vars[key] = true
	}
	return vars
}

// Loader collects the variables available at runtime when no deployment
// descriptor is used: the live environment plus dotenv files
type Loader struct {
	defaultFiles []string
	envFiles     []string
	autoDetect   bool
}

// NewLoader creates a new env file loader
func NewLoader() *Loader {
	return &Loader{
		defaultFiles: DefaultEnvFiles,
		autoDetect:   true,
	}
}

// SetAutoDetect enables or disables loading the default env files from the scan root
func (l *Loader) SetAutoDetect(enabled bool) {
	l.autoDetect = enabled
}

// AddEnvFile adds an env file that must exist
func (l *Loader) AddEnvFile(path string) {
	l.envFiles = append(l.envFiles, path)
}

// SetEnvFiles sets the list of env files that must exist
func (l *Loader) SetEnvFiles(files []string) {
	l.envFiles = files
}

// Load reads the default files found in rootPath followed by the configured
// files and merges them. Later files override earlier ones.
func (l *Loader) Load(rootPath string) (map[string]string, error) {
	allVars := make(map[string]string)

	var paths []string
	if l.autoDetect {
		for _, name := range l.defaultFiles {
			path := filepath.Join(rootPath, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				paths = append(paths, path)
			}
		}
	}
	paths = append(paths, l.envFiles...)

	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		for k, v := range vars {
			allVars[k] = v
		}
	}

	return allVars, nil
}

// Available returns the names set in environ merged with the names loaded from env files
func (l *Loader) Available(rootPath string, environ []string) (map[string]bool, error) {
	available := Snapshot(environ)

	vars, err := l.Load(rootPath)
	if err != nil {
		return nil, err
	}
	for k := range vars {
		available[k] = true
	}
	return available, nil
}
