// Package loader defines the module-loading contract the composition engine
// depends on, plus the default in-memory Registry implementation.
//
// The reference runtime resolves modules dynamically from the filesystem; Go
// links statically, so applications register their resources, adapters,
// filters and pages against conventional paths at startup and the engine
// loads them by path at composition time.
package loader

import (
	"context"
	"fmt"
	"sort"
	"sync"

	perrors "github.com/pancakes-web/pancakes/errors"
)

// ModuleLoader locates a module by path. Implementations fail with an error
// wrapping errors.ErrModuleNotFound when the target cannot be located.
type ModuleLoader interface {
	LoadModule(ctx context.Context, path string) (interface{}, error)
}

// Registry is the default ModuleLoader: a mutex-guarded path → module map.
// It is safe for concurrent use and is the test vehicle for the engine.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]interface{}
}

var _ ModuleLoader = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]interface{})}
}

// Register stores module under path, replacing any previous registration.
func (r *Registry) Register(path string, module interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[path] = module
}

// LoadModule returns the module registered under path.
func (r *Registry) LoadModule(_ context.Context, path string) (interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, ok := r.modules[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", perrors.ErrModuleNotFound, path)
	}
	return module, nil
}

// Paths returns all registered paths in sorted order, primarily for
// diagnostics.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
