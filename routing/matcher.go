package routing

import (
	"context"
	"net/url"
	"strings"
	"sync"

	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/metrics"
	"github.com/pancakes-web/pancakes/pkg/logger"
)

// Matcher resolves request URLs against compiled routes and owns the
// per-(app, url) route-info cache. Query and lang are excluded from the
// cache key because they vary per call; a cache hit refreshes only the
// cached entry's Query field.
type Matcher struct {
	mu    sync.RWMutex
	cache map[string]*RouteInfo

	compiler *Compiler
	log      *logger.Logger
}

// NewMatcher creates a Matcher over the given compiler.
func NewMatcher(compiler *Compiler, log *logger.Logger) *Matcher {
	if log == nil {
		log = logger.NewDefault("routing")
	}
	return &Matcher{
		cache:    make(map[string]*RouteInfo),
		compiler: compiler,
		log:      log,
	}
}

// GetRouteInfo resolves a request URL for an app. Compiled routes are
// scanned in declaration order and the first regex match wins. Unmatched
// URLs fail with a RouteNotFoundError for the HTTP layer to turn into a 404.
func (m *Matcher) GetRouteInfo(ctx context.Context, appName, requestURL string, query url.Values, lang string) (*RouteInfo, error) {
	key := appName + "||" + requestURL

	m.mu.Lock()
	if info, ok := m.cache[key]; ok {
		info.Query = query
		m.mu.Unlock()
		metrics.ObserveRouteLookup("hit")
		return info, nil
	}
	m.mu.Unlock()

	routes, err := m.compiler.GetRoutes(ctx, appName)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(requestURL)
	for _, route := range routes {
		if !route.URLRegex.MatchString(lower) {
			continue
		}

		info := route.clone()
		info.URL = lower
		info.Lang = lang
		info.Query = query
		info.Tokens = GetTokenValuesFromURL(route.URLPattern, lower)

		m.mu.Lock()
		m.cache[key] = info
		m.mu.Unlock()

		metrics.ObserveRouteLookup("miss")
		return info, nil
	}

	metrics.ObserveRouteLookup("notfound")
	return nil, &perrors.RouteNotFoundError{AppName: appName, URL: requestURL}
}
