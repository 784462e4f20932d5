// Package pipeline orchestrates web request processing: page loading, model
// resolution, pre-processing hooks, page-cache lookup, rendering and cache
// population. Stages run strictly in order and the first failure stops the
// pipeline; the core performs no retries.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pancakes-web/pancakes/cache"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/metrics"
	"github.com/pancakes-web/pancakes/pkg/logger"
	"github.com/pancakes-web/pancakes/routing"
)

// Pipeline processes web requests for resolved routes.
type Pipeline struct {
	loader   loader.ModuleLoader
	renderer Renderer
	pages    cache.PageCache
	log      *logger.Logger

	mu         sync.RWMutex
	appCaches  map[string]cache.PageCache
	addToModel map[string]AddToModelFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPageCache replaces the default bounded LRU page cache.
func WithPageCache(pages cache.PageCache) Option {
	return func(p *Pipeline) { p.pages = pages }
}

// WithLogger sets the pipeline's logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a Pipeline over the given module loader and renderer.
func New(ml loader.ModuleLoader, renderer Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:     ml,
		renderer:   renderer,
		appCaches:  make(map[string]cache.PageCache),
		addToModel: make(map[string]AddToModelFunc),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pages == nil {
		p.pages = cache.NewLRU()
	}
	if p.log == nil {
		p.log = logger.NewDefault("pipeline")
	}
	return p
}

// SetAppCache substitutes an app's page-cache collaborator. Apps without a
// substitute share the default cache.
func (p *Pipeline) SetAppCache(appName string, pages cache.PageCache) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appCaches[appName] = pages
}

// SetAddToModel registers the app-level addToModel hook.
func (p *Pipeline) SetAddToModel(appName string, hook AddToModelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addToModel[appName] = hook
}

func (p *Pipeline) cacheFor(appName string) cache.PageCache {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.appCaches[appName]; ok {
		return c
	}
	return p.pages
}

func (p *Pipeline) hookFor(appName string) AddToModelFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.addToModel[appName]
}

// SetDefaults assigns each default into model only when the key is
// currently unset. The model is modified in place.
func SetDefaults(model Model, defaults map[string]interface{}) {
	for key, value := range defaults {
		if _, ok := model[key]; !ok {
			model[key] = value
		}
	}
}

// GetInitialModel resolves a page's initial model. Pages without a model
// declaration get an empty model; a ModelFunc is invoked with the request's
// context object; any other declaration shape is a configuration error
// naming the route.
func (p *Pipeline) GetInitialModel(ctx context.Context, routeInfo *routing.RouteInfo, page *Page) (Model, error) {
	switch decl := page.Model.(type) {
	case nil:
		return Model{}, nil
	case ModelFunc:
		return p.invokeModel(ctx, routeInfo, page, decl)
	case func(ctx context.Context, mc *ModelContext) (Model, error):
		return p.invokeModel(ctx, routeInfo, page, decl)
	default:
		return nil, &perrors.ConfigurationError{
			Subject: "page model for route " + routeInfo.Name,
			Detail:  fmt.Sprintf("invalid declaration of type %T", decl),
		}
	}
}

func (p *Pipeline) invokeModel(ctx context.Context, routeInfo *routing.RouteInfo, page *Page, fn ModelFunc) (Model, error) {
	model, err := fn(ctx, &ModelContext{
		AppName:      routeInfo.AppName,
		Tokens:       routeInfo.Tokens,
		RouteInfo:    routeInfo,
		Defaults:     page.Defaults,
		CurrentScope: map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}
	if model == nil {
		model = Model{}
	}
	return model, nil
}

// ProcessWebRequest runs the full request pipeline for a resolved route and
// returns the rendered output. A request flagged server-only (route
// declaration or "server=true" query parameter) bypasses the page cache in
// both directions. When the page's serverPreprocessing hook reports that it
// handled the request, the pipeline resolves with no output.
func (p *Pipeline) ProcessWebRequest(ctx context.Context, routeInfo *routing.RouteInfo) (string, error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest(routeInfo.AppName, time.Since(start)) }()

	// Stage 1: page descriptor.
	page, err := p.loadPage(ctx, routeInfo)
	if err != nil {
		return "", err
	}

	// Stage 2: initial model, topped up with the page's declared defaults.
	model, err := p.GetInitialModel(ctx, routeInfo, page)
	if err != nil {
		return "", err
	}
	SetDefaults(model, page.Defaults)

	// Stage 3: pre-processing hook may answer through a side channel.
	if page.ServerPreprocessing != nil {
		handled, err := page.ServerPreprocessing(ctx, routeInfo, page, model)
		if err != nil {
			return "", err
		}
		if handled {
			return "", nil
		}
	}

	// Stage 4: cache key from URL and serialized model.
	serialized, err := json.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("serialize model for %s: %w", routeInfo.URL, err)
	}
	cacheKey := routeInfo.URL + "||" + string(serialized)

	serverOnly := routeInfo.ServerOnly || routeInfo.Query.Get("server") == "true"
	pages := p.cacheFor(routeInfo.AppName)

	// Stages 5-6: cached render wins unless the request is server-only.
	if !serverOnly {
		cached, found, err := pages.Get(ctx, cacheKey)
		if err != nil {
			return "", err
		}
		if found {
			metrics.ObservePageCache("hit")
			return cached, nil
		}
		metrics.ObservePageCache("miss")
	} else {
		metrics.ObservePageCache("bypass")
	}

	// Stage 7: enrich, render, populate.
	if hook := p.hookFor(routeInfo.AppName); hook != nil {
		if err := hook(ctx, model, routeInfo); err != nil {
			return "", err
		}
	}

	rendered, err := p.renderer.RenderPage(ctx, routeInfo, page, model)
	if err != nil {
		return "", err
	}

	if !serverOnly {
		if err := pages.Set(ctx, cacheKey, rendered); err != nil {
			p.log.WithError(err).Warnf("failed to cache render for %s", routeInfo.URL)
		}
	}
	return rendered, nil
}

func (p *Pipeline) loadPage(ctx context.Context, routeInfo *routing.RouteInfo) (*Page, error) {
	module, err := p.loader.LoadModule(ctx, PagePath(routeInfo.AppName, routeInfo.Name))
	if err != nil {
		return nil, err
	}
	page, ok := module.(*Page)
	if !ok {
		return nil, &perrors.ConfigurationError{
			Subject: "page for route " + routeInfo.Name,
			Detail:  "registered module is not a *pipeline.Page",
		}
	}
	return page, nil
}
