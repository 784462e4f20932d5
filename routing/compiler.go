package routing

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/pancakes-web/pancakes/config"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/pkg/logger"
)

// placeholderClass matches one URL token value: alphanumerics, hyphen,
// underscore and tilde.
const placeholderClass = "([0-9a-zA-Z\\-_~]+)"

// ConvertURLPatternToRegex compiles a URL pattern into an anchored regular
// expression. Every {name} placeholder becomes a character class matching
// one or more alphanumeric/hyphen/underscore/tilde characters; path
// separators are escaped; the whole pattern is anchored.
func ConvertURLPatternToRegex(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(escapeLiteral(rest))
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, &perrors.ConfigurationError{
				Subject: "url pattern " + pattern,
				Detail:  "unterminated placeholder",
			}
		}
		b.WriteString(escapeLiteral(rest[:open]))
		b.WriteString(placeholderClass)
		rest = rest[open+end+1:]
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}

func escapeLiteral(s string) string {
	escaped := regexp.QuoteMeta(s)
	return strings.ReplaceAll(escaped, "/", "\\/")
}

// Compiler turns app route declarations into RouteInfo templates and owns
// the per-app route cache. Compilation happens lazily on the first request
// for an app and is memoized for the process lifetime.
type Compiler struct {
	mu    sync.RWMutex
	cache map[string][]*RouteInfo

	provider config.Provider
	log      *logger.Logger
}

// NewCompiler creates a Compiler backed by the given config provider.
func NewCompiler(provider config.Provider, log *logger.Logger) *Compiler {
	if log == nil {
		log = logger.NewDefault("routing")
	}
	return &Compiler{
		cache:    make(map[string][]*RouteInfo),
		provider: provider,
		log:      log,
	}
}

// GetRoutes returns the compiled routes for appName in declaration order,
// compiling them on first use. One RouteInfo is produced per URL template,
// with layout/wrapper/strip/data/serverOnly inherited from the app defaults
// when unset at route level.
func (c *Compiler) GetRoutes(ctx context.Context, appName string) ([]*RouteInfo, error) {
	c.mu.RLock()
	routes, ok := c.cache[appName]
	c.mu.RUnlock()
	if ok {
		return routes, nil
	}

	app, err := c.provider.GetAppConfig(ctx, appName)
	if err != nil {
		return nil, err
	}

	routes, err = compileApp(app)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[appName] = routes
	c.mu.Unlock()

	c.log.Debugf("compiled %d routes for app %s", len(routes), appName)
	return routes, nil
}

func compileApp(app *config.AppConfig) ([]*RouteInfo, error) {
	var routes []*RouteInfo
	for _, decl := range app.Routes {
		for _, pattern := range decl.URLs {
			re, err := ConvertURLPatternToRegex(pattern)
			if err != nil {
				return nil, err
			}
			routes = append(routes, &RouteInfo{
				Name:        decl.Name,
				URLPattern:  pattern,
				URLRegex:    re,
				Layout:      inheritString(decl.Layout, app.Defaults.Layout),
				Wrapper:     inheritString(decl.Wrapper, app.Defaults.Wrapper),
				Strip:       inheritBool(decl.Strip, app.Defaults.Strip),
				ContentType: inheritString(decl.ContentType, app.Defaults.ContentType),
				Data:        inheritData(decl.Data, app.Defaults.Data),
				ServerOnly:  inheritBool(decl.ServerOnly, app.Defaults.ServerOnly),
				AppName:     app.Name,
			})
		}
	}
	return routes, nil
}

func inheritString(routeValue, appDefault string) string {
	if routeValue != "" {
		return routeValue
	}
	return appDefault
}

func inheritBool(routeValue *bool, appDefault bool) bool {
	if routeValue != nil {
		return *routeValue
	}
	return appDefault
}

func inheritData(routeValue, appDefault map[string]interface{}) map[string]interface{} {
	if routeValue != nil {
		return routeValue
	}
	return appDefault
}
