// Package pancakes is the runtime core of an isomorphic web framework: it
// turns declarative naming conventions and configuration into live, composed
// services, and resolves incoming request URLs into cached, renderable
// pages.
//
// The facade in this package wires the composition engine (naming →
// resource/adapter/filter resolution → method-chain assembly → memoized
// service) to the route resolution and request pipeline (pattern
// compilation, token extraction, route/page caching, request orchestration).
package pancakes

import (
	"context"
	"net/url"
	"sync"

	"github.com/pancakes-web/pancakes/cache"
	"github.com/pancakes-web/pancakes/compose"
	"github.com/pancakes-web/pancakes/config"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/naming"
	"github.com/pancakes-web/pancakes/pipeline"
	"github.com/pancakes-web/pancakes/pkg/logger"
	"github.com/pancakes-web/pancakes/resource"
	"github.com/pancakes-web/pancakes/routing"
)

// Options configures a framework instance.
type Options struct {
	// AdapterMap maps adapter category names to implementation identifiers.
	AdapterMap map[string]string
	// Container names the runtime container for default-adapter resolution
	// (e.g. "webserver", "api", "batch"). Defaults to "webserver".
	Container string
	// OverrideCategories lists the adapter categories whose primary
	// implementation merges with a generic override layer. Defaults to
	// ["repo"].
	OverrideCategories []string
	// Loader locates registered modules. Defaults to an empty Registry.
	Loader loader.ModuleLoader
	// ConfigProvider supplies per-app route declarations.
	ConfigProvider config.Provider
	// Renderer produces page output for the request pipeline.
	Renderer pipeline.Renderer
	// PageCache replaces the default bounded LRU page cache.
	PageCache cache.PageCache
	// Logger is shared by all components. Defaults to a text logger.
	Logger *logger.Logger
}

// Pancakes is a framework instance. It is inert until Init is called; using
// it before then fails deterministically.
type Pancakes struct {
	mu          sync.RWMutex
	initialized bool

	composer *compose.Composer
	compiler *routing.Compiler
	matcher  *routing.Matcher
	pipe     *pipeline.Pipeline
	log      *logger.Logger
}

// New creates an uninitialized framework instance.
func New() *Pancakes {
	return &Pancakes{}
}

// Init wires the framework from the given options. It may be called once;
// subsequent calls replace the wiring (useful in tests).
func (p *Pancakes) Init(opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("pancakes")
	}

	ml := opts.Loader
	if ml == nil {
		ml = loader.NewRegistry()
	}

	container := opts.Container
	if container == "" {
		container = "webserver"
	}

	policy := resource.DefaultOverridePolicy()
	if opts.OverrideCategories != nil {
		policy = resource.OverridePolicy{}
		for _, category := range opts.OverrideCategories {
			policy[category] = true
		}
	}

	provider := opts.ConfigProvider
	if provider == nil {
		provider = config.NewStatic()
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = pipeline.RendererFunc(func(context.Context, *routing.RouteInfo, *pipeline.Page, pipeline.Model) (string, error) {
			return "", &perrors.ConfigurationError{Subject: "pancakes", Detail: "no renderer configured"}
		})
	}

	var pipeOpts []pipeline.Option
	if opts.PageCache != nil {
		pipeOpts = append(pipeOpts, pipeline.WithPageCache(opts.PageCache))
	}
	pipeOpts = append(pipeOpts, pipeline.WithLogger(log.WithField("component", "pipeline")))

	compiler := routing.NewCompiler(provider, log.WithField("component", "routing"))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = log
	p.composer = compose.New(ml, opts.AdapterMap,
		compose.WithContainer(container),
		compose.WithOverridePolicy(policy),
		compose.WithLogger(log.WithField("component", "composer")),
	)
	p.compiler = compiler
	p.matcher = routing.NewMatcher(compiler, log.WithField("component", "routing"))
	p.pipe = pipeline.New(ml, renderer, pipeOpts...)
	p.initialized = true

	log.Infof("pancakes initialized (container=%s)", container)
	return nil
}

// IsCandidate reports whether name looks like a service name this framework
// can compose.
func IsCandidate(name string) bool {
	return naming.IsCandidate(name)
}

// CreateService returns the composed service for serviceName, building and
// memoizing it on first use. It fails if Init has not been called.
func (p *Pancakes) CreateService(ctx context.Context, serviceName string) (*compose.Service, error) {
	p.mu.RLock()
	ready, composer := p.initialized, p.composer
	p.mu.RUnlock()
	if !ready {
		return nil, perrors.ErrNotInitialized
	}
	return composer.Create(ctx, serviceName)
}

// GetRouteInfo resolves a request URL for an app.
func (p *Pancakes) GetRouteInfo(ctx context.Context, appName, requestURL string, query url.Values, lang string) (*routing.RouteInfo, error) {
	p.mu.RLock()
	ready, matcher := p.initialized, p.matcher
	p.mu.RUnlock()
	if !ready {
		return nil, perrors.ErrNotInitialized
	}
	return matcher.GetRouteInfo(ctx, appName, requestURL, query, lang)
}

// ProcessWebRequest resolves the URL and runs the request pipeline,
// returning the rendered output.
func (p *Pancakes) ProcessWebRequest(ctx context.Context, appName, requestURL string, query url.Values, lang string) (string, error) {
	routeInfo, err := p.GetRouteInfo(ctx, appName, requestURL, query, lang)
	if err != nil {
		return "", err
	}
	return p.Pipeline().ProcessWebRequest(ctx, routeInfo)
}

// Pipeline exposes the request pipeline for app-level hooks and cache
// substitution. It is nil before Init.
func (p *Pancakes) Pipeline() *pipeline.Pipeline {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pipe
}

// Composer exposes the service composer. It is nil before Init.
func (p *Pancakes) Composer() *compose.Composer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.composer
}

// Matcher exposes the route matcher. It is nil before Init.
func (p *Pancakes) Matcher() *routing.Matcher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.matcher
}
