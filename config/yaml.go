package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadAppConfigFromPath reads and validates a single app config YAML file.
func LoadAppConfigFromPath(path string) (*AppConfig, error) {
	cfg, err := readAppConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &cfg, nil
}

// YAMLDir is a Provider reading <dir>/<appName>.yaml on demand.
type YAMLDir struct {
	dir string
}

var _ Provider = (*YAMLDir)(nil)

// NewYAMLDir creates a provider rooted at dir.
func NewYAMLDir(dir string) *YAMLDir {
	return &YAMLDir{dir: dir}
}

// GetAppConfig loads <dir>/<appName>.yaml. The app name defaults to the file
// name when the document does not set one. The route compiler memoizes the
// result per app, so the file is read once per process in practice.
func (p *YAMLDir) GetAppConfig(_ context.Context, appName string) (*AppConfig, error) {
	cfg, err := readAppConfig(filepath.Join(p.dir, appName+".yaml"))
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
