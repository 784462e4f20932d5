package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pancakes-web/pancakes"
	"github.com/pancakes-web/pancakes/config"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/pipeline"
	"github.com/pancakes-web/pancakes/pkg/logger"
	"github.com/pancakes-web/pancakes/routing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := loader.NewRegistry()
	reg.Register(pipeline.PagePath("samples", "post"), &pipeline.Page{
		Name: "post",
		Model: pipeline.ModelFunc(func(_ context.Context, mc *pipeline.ModelContext) (pipeline.Model, error) {
			return pipeline.Model{"id": mc.Tokens["id"]}, nil
		}),
	})

	app := &config.AppConfig{
		Name:     "samples",
		Defaults: config.AppDefaults{ContentType: "text/html"},
		Routes: []config.RouteDeclaration{
			{Name: "post", URLs: []string{"/posts/{id}"}},
		},
	}

	framework := pancakes.New()
	err := framework.Init(pancakes.Options{
		AdapterMap:     map[string]string{"service": "generic"},
		Loader:         reg,
		ConfigProvider: config.NewStatic(app),
		Renderer: pipeline.RendererFunc(func(_ context.Context, _ *routing.RouteInfo, _ *pipeline.Page, model pipeline.Model) (string, error) {
			id, _ := model["id"].(string)
			return "<post " + id + ">", nil
		}),
	})
	require.NoError(t, err)

	return NewServer(Config{AppName: "samples", DefaultLang: "en"}, framework, logger.NewDefault("web-test"))
}

func TestHandlePageRenders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<post 42>", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestHandlePageNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a valid request")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewDefault("web-test"))
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "burst of one exhausted")
}

func TestRequestLang(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "en", requestLang(req, "en"))

	req.Header.Set("Accept-Language", "fr-CA;q=0.9, en;q=0.8")
	assert.Equal(t, "fr-CA", requestLang(req, "en"))
}
