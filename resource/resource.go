// Package resource loads and shapes the building blocks of a composed
// service: the resource descriptor (which methods exist and which adapter
// category each container defaults to), the adapter (the implementations),
// and the filter set (before/after transforms).
//
// Modules are addressed by fixed path conventions. Dot segments in a
// resource name map to nested path segments, so resource "blah.yo" lives at
// "resources/blah/yo/yo.resource".
package resource

import (
	"context"
	"strings"

	"github.com/pancakes-web/pancakes/chain"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/naming"
)

// DefaultAdapterName is the generic adapter category used when a service
// name carries no explicit adapter token.
const DefaultAdapterName = "service"

// Resource declares which method names a service may expose and which
// adapter category to use by default per container.
type Resource struct {
	Name    string
	Methods []string
	// Adapters maps a container name ("api", "webserver", ...) to the
	// adapter category that container should default to.
	Adapters map[string]string
}

// Adapter maps method names to their implementations. It may be the result
// of merging a primary implementation with a generic override.
type Adapter map[string]chain.Handler

// FilterSpec declares where a named filter applies.
type FilterSpec struct {
	Name string
	// All applies the filter to every method of the resource.
	All bool
	// ResourceNames is the explicit allow-list consulted when All is false.
	// Entries may name the resource or individual methods.
	ResourceNames []string
}

// AppliesTo reports whether the spec covers the given resource and method.
func (f FilterSpec) AppliesTo(resourceName, method string) bool {
	if f.All {
		return true
	}
	for _, n := range f.ResourceNames {
		if n == resourceName || n == method {
			return true
		}
	}
	return false
}

// FilterSet bundles the before/after declarations with the named filter
// functions they reference.
type FilterSet struct {
	BeforeFilters []FilterSpec
	AfterFilters  []FilterSpec
	Functions     map[string]chain.Handler
}

// Path conventions ------------------------------------------------------------

// ResourcePath returns the module path for a resource descriptor.
func ResourcePath(resourceName string) string {
	segments := strings.Split(resourceName, ".")
	last := segments[len(segments)-1]
	return "resources/" + strings.Join(segments, "/") + "/" + last + ".resource"
}

// AdapterPath returns the module path for the primary adapter of a service.
func AdapterPath(info naming.ServiceInfo) string {
	return "adapters/" + info.AdapterName + "/" + info.AdapterImpl + "/" + resourceSegments(info.ResourceName)
}

// GenericAdapterPath returns the module path of the generic override layer
// for the same resource.
func GenericAdapterPath(info naming.ServiceInfo) string {
	return "adapters/" + info.AdapterName + "/generic/" + resourceSegments(info.ResourceName)
}

// FilterPath returns the module path for a resource's filter set.
func FilterPath(info naming.ServiceInfo) string {
	return "filters/" + info.AdapterName + "/" + resourceSegments(info.ResourceName)
}

func resourceSegments(resourceName string) string {
	return strings.ReplaceAll(resourceName, ".", "/")
}

// Loading ----------------------------------------------------------------------

// GetResource loads the resource descriptor addressed by the service info.
func GetResource(ctx context.Context, info naming.ServiceInfo, ml loader.ModuleLoader) (*Resource, error) {
	module, err := ml.LoadModule(ctx, ResourcePath(info.ResourceName))
	if err != nil {
		return nil, &perrors.ResourceNotFoundError{ResourceName: info.ResourceName}
	}

	res, ok := module.(*Resource)
	if !ok {
		return nil, &perrors.ConfigurationError{
			Subject: "resource " + info.ResourceName,
			Detail:  "registered module is not a *resource.Resource",
		}
	}
	return res, nil
}

// CheckForDefaultAdapter rewrites the service info when the resource
// declares a default adapter category for the given container and the
// currently resolved adapter is still the generic "service" default.
func CheckForDefaultAdapter(info *naming.ServiceInfo, res *Resource, adapterMap map[string]string, container string) {
	if res == nil || info.AdapterName != DefaultAdapterName {
		return
	}
	category, ok := res.Adapters[container]
	if !ok || category == "" {
		return
	}
	info.AdapterName = category
	info.AdapterImpl = adapterMap[category]
}

// OverridePolicy names the adapter categories whose primary implementation
// is merged with a generic override layer. Which categories opt in is
// application configuration, not a fixed list.
type OverridePolicy map[string]bool

// DefaultOverridePolicy enables override merging for the "repo" category
// only, matching the stock adapter set.
func DefaultOverridePolicy() OverridePolicy {
	return OverridePolicy{"repo": true}
}

// GetAdapter loads the primary adapter module for the service and, when the
// adapter category opts into override merging, layers the generic module for
// the same resource over it.
func GetAdapter(ctx context.Context, info naming.ServiceInfo, ml loader.ModuleLoader, policy OverridePolicy) (Adapter, error) {
	path := AdapterPath(info)
	module, err := ml.LoadModule(ctx, path)
	if err != nil {
		return nil, &perrors.AdapterNotFoundError{Path: path}
	}
	primary, err := asAdapter(module, path)
	if err != nil {
		return nil, err
	}

	if !policy[info.AdapterName] {
		return primary, nil
	}

	genericModule, err := ml.LoadModule(ctx, GenericAdapterPath(info))
	if err != nil {
		// No generic layer for this resource; the primary stands alone.
		return primary, nil
	}
	override, err := asAdapter(genericModule, GenericAdapterPath(info))
	if err != nil {
		return nil, err
	}
	return MergeAdapters(primary, override), nil
}

// MergeAdapters layers override on top of primary: colliding keys take the
// override value, non-colliding primary keys survive. Neither input is
// mutated. The merge is not commutative.
func MergeAdapters(primary, override Adapter) Adapter {
	merged := make(Adapter, len(primary)+len(override))
	for name, impl := range primary {
		merged[name] = impl
	}
	for name, impl := range override {
		merged[name] = impl
	}
	return merged
}

func asAdapter(module interface{}, path string) (Adapter, error) {
	switch m := module.(type) {
	case Adapter:
		return m, nil
	case map[string]chain.Handler:
		return Adapter(m), nil
	default:
		return nil, &perrors.ConfigurationError{
			Subject: "adapter " + path,
			Detail:  "registered module is not a resource.Adapter",
		}
	}
}

// GetFilters loads the filter set for the service's resource. A missing
// module is not an error: services without filters get an empty set.
func GetFilters(ctx context.Context, info naming.ServiceInfo, ml loader.ModuleLoader) (*FilterSet, error) {
	module, err := ml.LoadModule(ctx, FilterPath(info))
	if err != nil {
		if perrors.Is(err, perrors.ErrModuleNotFound) {
			return &FilterSet{}, nil
		}
		return nil, err
	}

	fs, ok := module.(*FilterSet)
	if !ok {
		return nil, &perrors.ConfigurationError{
			Subject: "filters for resource " + info.ResourceName,
			Detail:  "registered module is not a *resource.FilterSet",
		}
	}
	return fs, nil
}
