// Package compose orchestrates service composition: name resolution,
// resource/adapter/filter loading and method-chain assembly, with a
// process-wide memo of finished services.
package compose

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pancakes-web/pancakes/chain"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/metrics"
	"github.com/pancakes-web/pancakes/naming"
	"github.com/pancakes-web/pancakes/pkg/logger"
	"github.com/pancakes-web/pancakes/resource"
)

// Service is a composed service: a mapping of method names to async
// callables. It is immutable once built.
type Service struct {
	name    string
	methods map[string]chain.Handler
}

// Name returns the service name the object was composed for.
func (s *Service) Name() string { return s.name }

// Method returns the named composed method.
func (s *Service) Method(name string) (chain.Handler, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Call invokes the named method with the given input.
func (s *Service) Call(ctx context.Context, method string, input interface{}) (interface{}, error) {
	m, ok := s.methods[method]
	if !ok {
		return nil, &perrors.ConfigurationError{
			Subject: "service " + s.name,
			Detail:  "has no method " + method,
		}
	}
	return m(ctx, input)
}

// Methods returns the sorted method names the service exposes.
func (s *Service) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Composer builds services and owns the service cache. A composed service is
// cached forever for the life of the process; failed compositions are never
// cached, so the next call retries resolution. Concurrent misses for the
// same name do redundant work and converge to equivalent objects, last write
// wins.
type Composer struct {
	mu    sync.RWMutex
	cache map[string]*Service

	loader     loader.ModuleLoader
	adapterMap map[string]string
	container  string
	overrides  resource.OverridePolicy
	log        *logger.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithContainer sets the container name used for default-adapter resolution.
func WithContainer(container string) Option {
	return func(c *Composer) { c.container = container }
}

// WithOverridePolicy sets which adapter categories merge a generic override.
func WithOverridePolicy(policy resource.OverridePolicy) Option {
	return func(c *Composer) { c.overrides = policy }
}

// WithLogger sets the composer's logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Composer) { c.log = log }
}

// New creates a Composer backed by the given loader and adapter map.
func New(ml loader.ModuleLoader, adapterMap map[string]string, opts ...Option) *Composer {
	c := &Composer{
		cache:      make(map[string]*Service),
		loader:     ml,
		adapterMap: adapterMap,
		container:  "webserver",
		overrides:  resource.DefaultOverridePolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewDefault("composer")
	}
	return c
}

// Create returns the composed service for serviceName, building and caching
// it on first use.
func (c *Composer) Create(ctx context.Context, serviceName string) (*Service, error) {
	c.mu.RLock()
	svc, ok := c.cache[serviceName]
	c.mu.RUnlock()
	if ok {
		metrics.ObserveComposition("hit", 0)
		return svc, nil
	}

	start := time.Now()
	svc, err := c.build(ctx, serviceName)
	if err != nil {
		metrics.ObserveComposition("error", 0)
		c.log.WithError(err).Warnf("composition of %s failed", serviceName)
		return nil, err
	}
	metrics.ObserveComposition("miss", time.Since(start))

	c.mu.Lock()
	c.cache[serviceName] = svc
	c.mu.Unlock()

	c.log.Debugf("composed service %s with methods %v", serviceName, svc.Methods())
	return svc, nil
}

func (c *Composer) build(ctx context.Context, serviceName string) (*Service, error) {
	info, err := naming.GetServiceInfo(serviceName, c.adapterMap)
	if err != nil {
		return nil, err
	}

	res, err := resource.GetResource(ctx, info, c.loader)
	if err != nil {
		return nil, err
	}

	resource.CheckForDefaultAdapter(&info, res, c.adapterMap, c.container)

	adapter, err := resource.GetAdapter(ctx, info, c.loader, c.overrides)
	if err != nil {
		return nil, err
	}

	filters, err := resource.GetFilters(ctx, info, c.loader)
	if err != nil {
		return nil, err
	}

	return PutItAllTogether(serviceName, info, res, adapter, filters)
}

// CachedCount returns how many services are memoized, for diagnostics.
func (c *Composer) CachedCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// PutItAllTogether assembles the composed service from its parts. Every
// method present in both the resource's method list and the adapter gets
// wrapped with its applicable before/after filters in declared order;
// resource methods absent from the adapter are skipped.
func PutItAllTogether(serviceName string, info naming.ServiceInfo, res *resource.Resource,
	adapter resource.Adapter, filters *resource.FilterSet) (*Service, error) {

	if res == nil || len(res.Methods) == 0 {
		name := info.ResourceName
		if res != nil && res.Name != "" {
			name = res.Name
		}
		return nil, &perrors.NoMethodsError{ResourceName: name}
	}
	if filters == nil {
		filters = &resource.FilterSet{}
	}

	methods := make(map[string]chain.Handler)
	for _, method := range res.Methods {
		impl, ok := adapter[method]
		if !ok {
			continue
		}

		var calls []chain.Handler
		for _, spec := range filters.BeforeFilters {
			if !spec.AppliesTo(info.ResourceName, method) {
				continue
			}
			fn, err := lookupFilter(filters, spec.Name, info.ResourceName)
			if err != nil {
				return nil, err
			}
			calls = append(calls, fn)
		}
		calls = append(calls, impl)
		for _, spec := range filters.AfterFilters {
			if !spec.AppliesTo(info.ResourceName, method) {
				continue
			}
			fn, err := lookupFilter(filters, spec.Name, info.ResourceName)
			if err != nil {
				return nil, err
			}
			calls = append(calls, fn)
		}

		methods[method] = chain.Compose(calls...)
	}

	return &Service{name: serviceName, methods: methods}, nil
}

func lookupFilter(filters *resource.FilterSet, name, resourceName string) (chain.Handler, error) {
	fn, ok := filters.Functions[name]
	if !ok || fn == nil {
		return nil, &perrors.ConfigurationError{
			Subject: "filters for resource " + resourceName,
			Detail:  "filter " + name + " is declared but not defined",
		}
	}
	return fn, nil
}
