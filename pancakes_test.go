package pancakes

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pancakes-web/pancakes/config"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/pipeline"
	"github.com/pancakes-web/pancakes/resource"
	"github.com/pancakes-web/pancakes/routing"
)

func TestUninitializedUseFails(t *testing.T) {
	p := New()

	_, err := p.CreateService(context.Background(), "someService")
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrNotInitialized)
	assert.Equal(t, "Pancakes has not yet been initialized", err.Error())

	_, err = p.GetRouteInfo(context.Background(), "samples", "/", nil, "")
	assert.ErrorIs(t, err, perrors.ErrNotInitialized)

	_, err = p.ProcessWebRequest(context.Background(), "samples", "/", nil, "")
	assert.ErrorIs(t, err, perrors.ErrNotInitialized)
}

func newInitializedFramework(t *testing.T) (*Pancakes, *loader.Registry) {
	t.Helper()

	reg := loader.NewRegistry()
	reg.Register("resources/some/some.resource", &resource.Resource{
		Name:    "some",
		Methods: []string{"one", "two"},
	})
	reg.Register("adapters/service/generic/some", resource.Adapter{
		"one": func(_ context.Context, _ interface{}) (interface{}, error) {
			return "hello, world", nil
		},
	})
	reg.Register(pipeline.PagePath("samples", "post"), &pipeline.Page{
		Name: "post",
		Model: pipeline.ModelFunc(func(_ context.Context, mc *pipeline.ModelContext) (pipeline.Model, error) {
			return pipeline.Model{"id": mc.Tokens["id"]}, nil
		}),
	})

	app := &config.AppConfig{
		Name: "samples",
		Routes: []config.RouteDeclaration{
			{Name: "post", URLs: []string{"/posts/{id}"}},
		},
	}

	p := New()
	err := p.Init(Options{
		AdapterMap:     map[string]string{"service": "generic"},
		Loader:         reg,
		ConfigProvider: config.NewStatic(app),
		Renderer: pipeline.RendererFunc(func(_ context.Context, info *routing.RouteInfo, _ *pipeline.Page, model pipeline.Model) (string, error) {
			id, _ := model["id"].(string)
			return "<post " + id + " at " + info.URL + ">", nil
		}),
	})
	require.NoError(t, err)
	return p, reg
}

func TestEndToEndServiceComposition(t *testing.T) {
	p, _ := newInitializedFramework(t)
	ctx := context.Background()

	svc, err := p.CreateService(ctx, "someService")
	require.NoError(t, err)

	out, err := svc.Call(ctx, "one", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", out)

	_, ok := svc.Method("two")
	assert.False(t, ok, "resource methods missing from the adapter are not exposed")

	again, err := p.CreateService(ctx, "someService")
	require.NoError(t, err)
	assert.Same(t, svc, again)
}

func TestEndToEndWebRequest(t *testing.T) {
	p, _ := newInitializedFramework(t)
	ctx := context.Background()

	out, err := p.ProcessWebRequest(ctx, "samples", "/posts/42", nil, "en")
	require.NoError(t, err)
	assert.Equal(t, "<post 42 at /posts/42>", out)
}

func TestEndToEndUnmatchedURLIs404(t *testing.T) {
	p, _ := newInitializedFramework(t)

	_, err := p.ProcessWebRequest(context.Background(), "samples", "/no/such/page", nil, "")
	require.Error(t, err)

	var nf *perrors.RouteNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestEndToEndServerOnlyBypassesPageCache(t *testing.T) {
	p, _ := newInitializedFramework(t)
	ctx := context.Background()

	renders := 0
	p.Pipeline().SetAddToModel("samples", func(_ context.Context, _ pipeline.Model, _ *routing.RouteInfo) error {
		renders++
		return nil
	})

	_, err := p.ProcessWebRequest(ctx, "samples", "/posts/42", nil, "")
	require.NoError(t, err)
	_, err = p.ProcessWebRequest(ctx, "samples", "/posts/42", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, renders, "second request served from cache")

	_, err = p.ProcessWebRequest(ctx, "samples", "/posts/42", url.Values{"server": {"true"}}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, renders, "server=true forces a fresh render despite the cached entry")
}

func TestIsCandidate(t *testing.T) {
	assert.True(t, IsCandidate("someService"))
	assert.False(t, IsCandidate("some/path/Service"))
	assert.False(t, IsCandidate("widget"))
}
