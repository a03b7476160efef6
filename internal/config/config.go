package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jenian/envcheck/internal/descriptor"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file looked up in the scan root
const FileName = ".envcheck.config"

// Config represents the envcheck configuration file
type Config struct {
	Ignores    IgnoresConfig    `yaml:"ignores"`
	Descriptor DescriptorConfig `yaml:"descriptor"`
}

// IgnoresConfig contains ignore rules for environment variables
type IgnoresConfig struct {
	Missing []string `yaml:"missing"` // Variables never reported as missing
	Unused  []string `yaml:"unused"`  // Variables never reported as unused (e.g. platform toggles)
	Folders []string `yaml:"folders"` // Folders to skip when scanning (names or relative paths)
}

// DescriptorConfig controls how the deployment descriptor is found and read
type DescriptorConfig struct {
	Path     string   `yaml:"path"`     // Descriptor used when --descriptor is not given
	Sections []string `yaml:"sections"` // Keys whose children are declared variables
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Ignores: IgnoresConfig{
			Missing: []string{},
			Unused:  []string{},
			Folders: []string{},
		},
		Descriptor: DescriptorConfig{
			Sections: []string{descriptor.DefaultSection},
		},
	}
}

// LoadConfig loads the .envcheck.config file from the specified directory
func LoadConfig(rootPath string) (*Config, error) {
	configPath := filepath.Join(rootPath, FileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(config.Descriptor.Sections) == 0 {
		config.Descriptor.Sections = []string{descriptor.DefaultSection}
	}

	return config, nil
}

// ShouldIgnoreMissing checks if a variable should be ignored when reporting as missing
func (c *Config) ShouldIgnoreMissing(varName string) bool {
	return slices.Contains(c.Ignores.Missing, varName)
}

// ShouldIgnoreUnused checks if a variable should be ignored when reporting as unused
func (c *Config) ShouldIgnoreUnused(varName string) bool {
	return slices.Contains(c.Ignores.Unused, varName)
}

// Template is the content written by `envcheck init-config`
const Template = `# .envcheck.config
# Configuration file for envcheck

ignores:
  # Variables provided in custom ways (not in the deployment descriptor)
  # These will not be reported as missing
  missing:
    # - CUSTOM_API_KEY

  # Variables declared in the descriptor for the platform rather than the code
  # These will not be reported as unused
  unused:
    # - AWS_NODEJS_CONNECTION_REUSE_ENABLED

  # Folders to ignore when scanning (directory names or paths relative to the scan root)
  folders:
    # - scripts
    # - test/fixtures

descriptor:
  # Deployment descriptor to use when --descriptor is not given
  # path: serverless.yml

  # Keys whose children are declared variables, at any depth
  sections:
    - environment
`
