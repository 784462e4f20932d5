// Package web adapts the framework's route resolution and request pipeline
// to net/http. It is a thin outer surface: route misses become 404
// responses, configuration errors become 500s, and everything else is the
// pipeline's output written to the wire.
package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/pancakes-web/pancakes"
	perrors "github.com/pancakes-web/pancakes/errors"
	"github.com/pancakes-web/pancakes/metrics"
	"github.com/pancakes-web/pancakes/pkg/logger"
)

// Config controls the HTTP server.
type Config struct {
	Host string
	Port int
	// AppName is the app whose routes this server exposes.
	AppName string
	// DefaultLang is used when the request carries no Accept-Language.
	DefaultLang string
	// ReadTimeout/WriteTimeout default to 10s/30s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves one app's pages over HTTP.
type Server struct {
	cfg       Config
	framework *pancakes.Pancakes
	log       *logger.Logger
	srv       *http.Server
}

// NewServer wires the framework behind a mux router with tracing and
// metrics middleware. Extra middleware runs outermost-first.
func NewServer(cfg Config, framework *pancakes.Pancakes, log *logger.Logger, extra ...mux.MiddlewareFunc) *Server {
	if log == nil {
		log = logger.NewDefault("web")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	s := &Server{cfg: cfg, framework: framework, log: log}

	router := mux.NewRouter()
	router.Use(mux.MiddlewareFunc(Tracing(log)))
	router.Use(mux.MiddlewareFunc(Metrics()))
	for _, mw := range extra {
		router.Use(mw)
	}

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.PathPrefix("/").HandlerFunc(s.handlePage)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := requestLang(r, s.cfg.DefaultLang)

	routeInfo, err := s.framework.GetRouteInfo(ctx, s.cfg.AppName, r.URL.Path, r.URL.Query(), lang)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.framework.Pipeline().ProcessWebRequest(ctx, routeInfo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out == "" {
		// A pre-processing hook answered through a side channel.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	contentType := routeInfo.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	fmt.Fprint(w, out)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := perrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func requestLang(r *http.Request, fallback string) string {
	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return fallback
	}
	lang := strings.TrimSpace(strings.Split(accept, ",")[0])
	if i := strings.IndexByte(lang, ';'); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return fallback
	}
	return lang
}
