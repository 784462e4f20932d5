package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	perrors "github.com/pancakes-web/pancakes/errors"
)

// JSONDir is a Provider reading <dir>/<appName>.json on demand. JSON app
// files are traversed with gjson so the free-form "data" blocks pass through
// untouched.
type JSONDir struct {
	dir string
}

var _ Provider = (*JSONDir)(nil)

// NewJSONDir creates a provider rooted at dir.
func NewJSONDir(dir string) *JSONDir {
	return &JSONDir{dir: dir}
}

// GetAppConfig loads <dir>/<appName>.json.
func (p *JSONDir) GetAppConfig(_ context.Context, appName string) (*AppConfig, error) {
	path := filepath.Join(p.dir, appName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config: %w", err)
	}
	return ParseAppConfigJSON(data, appName)
}

// ParseAppConfigJSON builds an AppConfig from a JSON document. appName is
// used when the document does not name the app itself.
func ParseAppConfigJSON(data []byte, appName string) (*AppConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, &perrors.ConfigurationError{
			Subject: "app " + appName,
			Detail:  "config is not valid JSON",
		}
	}
	root := gjson.ParseBytes(data)

	cfg := &AppConfig{
		Name: root.Get("name").String(),
		Defaults: AppDefaults{
			Layout:      root.Get("defaults.layout").String(),
			Wrapper:     root.Get("defaults.wrapper").String(),
			Strip:       root.Get("defaults.strip").Bool(),
			ContentType: root.Get("defaults.contentType").String(),
			Data:        asDataMap(root.Get("defaults.data")),
			ServerOnly:  root.Get("defaults.serverOnly").Bool(),
		},
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}

	root.Get("routes").ForEach(func(_, r gjson.Result) bool {
		route := RouteDeclaration{
			Name:        r.Get("name").String(),
			Layout:      r.Get("layout").String(),
			Wrapper:     r.Get("wrapper").String(),
			ContentType: r.Get("contentType").String(),
			Data:        asDataMap(r.Get("data")),
		}
		r.Get("urls").ForEach(func(_, u gjson.Result) bool {
			route.URLs = append(route.URLs, u.String())
			return true
		})
		if v := r.Get("strip"); v.Exists() {
			b := v.Bool()
			route.Strip = &b
		}
		if v := r.Get("serverOnly"); v.Exists() {
			b := v.Bool()
			route.ServerOnly = &b
		}
		cfg.Routes = append(cfg.Routes, route)
		return true
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func asDataMap(result gjson.Result) map[string]interface{} {
	if !result.IsObject() {
		return nil
	}
	m, _ := result.Value().(map[string]interface{})
	return m
}
