// Package config supplies per-app route declarations and app-level defaults
// to the route compiler. Providers may be static (in memory), YAML files or
// JSON files.
package config

import (
	"context"
	"fmt"
	"sync"

	perrors "github.com/pancakes-web/pancakes/errors"
)

// RouteDeclaration is one declared route. A route may list several URL
// templates; each compiles into its own RouteInfo. Pointer fields are
// tri-state: nil means "inherit the app default".
type RouteDeclaration struct {
	Name        string                 `yaml:"name" json:"name"`
	URLs        []string               `yaml:"urls" json:"urls"`
	Layout      string                 `yaml:"layout" json:"layout"`
	Wrapper     string                 `yaml:"wrapper" json:"wrapper"`
	Strip       *bool                  `yaml:"strip" json:"strip"`
	ContentType string                 `yaml:"contentType" json:"contentType"`
	Data        map[string]interface{} `yaml:"data" json:"data"`
	ServerOnly  *bool                  `yaml:"serverOnly" json:"serverOnly"`
}

// AppDefaults are the app-level values routes inherit when unset.
type AppDefaults struct {
	Layout      string                 `yaml:"layout" json:"layout"`
	Wrapper     string                 `yaml:"wrapper" json:"wrapper"`
	Strip       bool                   `yaml:"strip" json:"strip"`
	ContentType string                 `yaml:"contentType" json:"contentType"`
	Data        map[string]interface{} `yaml:"data" json:"data"`
	ServerOnly  bool                   `yaml:"serverOnly" json:"serverOnly"`
}

// AppConfig is the full route configuration of one app.
type AppConfig struct {
	Name     string             `yaml:"name" json:"name"`
	Defaults AppDefaults        `yaml:"defaults" json:"defaults"`
	Routes   []RouteDeclaration `yaml:"routes" json:"routes"`
}

// Validate checks structural requirements of an app config.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return &perrors.ConfigurationError{Subject: "app config", Detail: "name is required"}
	}
	for i, route := range c.Routes {
		if len(route.URLs) == 0 {
			return &perrors.ConfigurationError{
				Subject: fmt.Sprintf("app %s route %d (%s)", c.Name, i, route.Name),
				Detail:  "at least one url is required",
			}
		}
	}
	return nil
}

// Provider hands out app configurations by name.
type Provider interface {
	GetAppConfig(ctx context.Context, appName string) (*AppConfig, error)
}

// Static is an in-memory Provider, used by tests and programmatic setups.
type Static struct {
	mu   sync.RWMutex
	apps map[string]*AppConfig
}

var _ Provider = (*Static)(nil)

// NewStatic creates a provider holding the given app configs.
func NewStatic(apps ...*AppConfig) *Static {
	s := &Static{apps: make(map[string]*AppConfig)}
	for _, app := range apps {
		s.apps[app.Name] = app
	}
	return s
}

// Add registers or replaces an app config.
func (s *Static) Add(app *AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.Name] = app
}

// GetAppConfig returns the config for appName.
func (s *Static) GetAppConfig(_ context.Context, appName string) (*AppConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[appName]
	if !ok {
		return nil, &perrors.ConfigurationError{
			Subject: "app " + appName,
			Detail:  "no configuration registered",
		}
	}
	return app, nil
}
