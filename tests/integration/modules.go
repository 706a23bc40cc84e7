//go:build integration

package integration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Module represents a Go module whose fixture roots are scanned.
type Module struct {
	MinAttachments int    `yaml:"minAttachments"`
	Name           string `yaml:"name"`
	Path           string `yaml:"path"`
}

// ModulesConfig holds the list of modules to scan.
type ModulesConfig struct {
	Modules []Module `yaml:"modules"`
}

// LoadModules loads module definitions from testdata/modules.yaml.
// Relative module paths are resolved against the integration directory.
func LoadModules() (*ModulesConfig, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return nil, err
	}
	return loadModulesFromPath(filepath.Join(testDataDir, "modules.yaml"))
}

func loadModulesFromPath(path string) (*ModulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modules config from %s: %w", path, err)
	}

	var config ModulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshal modules config: %w", err)
	}

	if err := validateModulesConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid modules config: %w", err)
	}

	return &config, nil
}

func validateModulesConfig(config *ModulesConfig) error {
	if len(config.Modules) == 0 {
		return errors.New("no modules defined")
	}

	for i, m := range config.Modules {
		if m.Name == "" {
			return fmt.Errorf("module %d: name is required", i)
		}
		if m.Path == "" {
			return fmt.Errorf("module %s: path is required", m.Name)
		}
		if m.MinAttachments < 0 {
			return fmt.Errorf("module %s: minAttachments must not be negative", m.Name)
		}
	}
	return nil
}

// AbsPath returns the module directory.
func (m Module) AbsPath() (string, error) {
	if filepath.IsAbs(m.Path) {
		return m.Path, nil
	}
	dir, err := getIntegrationDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(m.Path)), nil
}

func getTestDataDir() (string, error) {
	integrationDir, err := getIntegrationDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(integrationDir, "testdata"), nil
}

func getIntegrationDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}
