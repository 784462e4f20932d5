package pipeline

import (
	"context"

	"github.com/pancakes-web/pancakes/routing"
)

// Model is the data a page is rendered with.
type Model map[string]interface{}

// ModelContext is handed to a page's model function when the initial model
// is resolved.
type ModelContext struct {
	AppName      string
	Tokens       map[string]string
	RouteInfo    *routing.RouteInfo
	Defaults     map[string]interface{}
	CurrentScope map[string]interface{}
}

// ModelFunc produces a page's initial model.
type ModelFunc func(ctx context.Context, mc *ModelContext) (Model, error)

// PreprocessFunc runs before cache lookup and rendering. Returning true
// means the hook already produced a response through a side channel and the
// pipeline stops with no output.
type PreprocessFunc func(ctx context.Context, routeInfo *routing.RouteInfo, page *Page, model Model) (bool, error)

// Page is a page descriptor module. Model declares how the initial model is
// produced: nil resolves to an empty model, a ModelFunc is invoked with the
// request's ModelContext, and any other shape is a configuration error.
type Page struct {
	Name                string
	Model               interface{}
	Defaults            map[string]interface{}
	ServerPreprocessing PreprocessFunc
}

// PagePath returns the module path of a page descriptor.
func PagePath(appName, pageName string) string {
	return "apps/" + appName + "/pages/" + pageName
}

// Renderer is the rendering collaborator invoked with the resolved route,
// page and model.
type Renderer interface {
	RenderPage(ctx context.Context, routeInfo *routing.RouteInfo, page *Page, model Model) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, routeInfo *routing.RouteInfo, page *Page, model Model) (string, error)

// RenderPage implements Renderer.
func (f RendererFunc) RenderPage(ctx context.Context, routeInfo *routing.RouteInfo, page *Page, model Model) (string, error) {
	return f(ctx, routeInfo, page, model)
}

// AddToModelFunc is the app-level hook run right before rendering, after
// the cache has been consulted.
type AddToModelFunc func(ctx context.Context, model Model, routeInfo *routing.RouteInfo) error
