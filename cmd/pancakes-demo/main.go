// Command pancakes-demo runs a minimal app on the framework: one resource,
// one adapter, a couple of routes and an HTML renderer, served over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/pancakes-web/pancakes"
	"github.com/pancakes-web/pancakes/cache"
	"github.com/pancakes-web/pancakes/config"
	"github.com/pancakes-web/pancakes/loader"
	"github.com/pancakes-web/pancakes/pipeline"
	"github.com/pancakes-web/pancakes/pkg/logger"
	"github.com/pancakes-web/pancakes/resource"
	"github.com/pancakes-web/pancakes/routing"
	"github.com/pancakes-web/pancakes/web"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	log := logger.New(logger.LoggingConfig{
		Level:  getenv("PANCAKES_LOG_LEVEL", "info"),
		Format: getenv("PANCAKES_LOG_FORMAT", "text"),
	})

	port, err := strconv.Atoi(getenv("PANCAKES_PORT", "8080"))
	if err != nil {
		log.Errorf("invalid PANCAKES_PORT: %v", err)
		os.Exit(1)
	}

	framework, pages, err := buildFramework(log)
	if err != nil {
		log.WithError(err).Error("failed to initialize framework")
		os.Exit(1)
	}

	// Sweep expired renders out of the page cache periodically.
	janitor := cron.New()
	if err := pages.AttachJanitor(janitor, "@every 30s"); err != nil {
		log.WithError(err).Error("failed to schedule cache janitor")
		os.Exit(1)
	}
	janitor.Start()
	defer janitor.Stop()

	server := web.NewServer(web.Config{
		Host:        getenv("PANCAKES_HOST", ""),
		Port:        port,
		AppName:     "demo",
		DefaultLang: "en",
	}, framework, log.WithField("component", "web"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithError(err).Error("server stopped")
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
}

func buildFramework(log *logger.Logger) (*pancakes.Pancakes, *cache.LRU, error) {
	reg := loader.NewRegistry()

	reg.Register("resources/greeting/greeting.resource", &resource.Resource{
		Name:    "greeting",
		Methods: []string{"fetch"},
	})
	reg.Register("adapters/service/generic/greeting", resource.Adapter{
		"fetch": func(_ context.Context, input interface{}) (interface{}, error) {
			name, _ := input.(string)
			if name == "" {
				name = "world"
			}
			return "hello, " + name, nil
		},
	})

	reg.Register(pipeline.PagePath("demo", "home"), &pipeline.Page{Name: "home"})
	reg.Register(pipeline.PagePath("demo", "greet"), &pipeline.Page{
		Name: "greet",
		Model: pipeline.ModelFunc(func(_ context.Context, mc *pipeline.ModelContext) (pipeline.Model, error) {
			return pipeline.Model{"name": mc.Tokens["name"]}, nil
		}),
	})

	app := &config.AppConfig{
		Name:     "demo",
		Defaults: config.AppDefaults{Layout: "default", ContentType: "text/html; charset=utf-8"},
		Routes: []config.RouteDeclaration{
			{Name: "home", URLs: []string{"/"}},
			{Name: "greet", URLs: []string{"/greet/{name}"}},
		},
	}

	pages := cache.NewLRU()
	framework := pancakes.New()

	err := framework.Init(pancakes.Options{
		AdapterMap:     map[string]string{"service": "generic"},
		Loader:         reg,
		ConfigProvider: config.NewStatic(app),
		PageCache:      pages,
		Logger:         log,
		Renderer:       pipeline.RendererFunc(renderDemo),
	})
	if err != nil {
		return nil, nil, err
	}

	// The greet page pulls its greeting through a composed service.
	svc, err := framework.CreateService(context.Background(), "greetingService")
	if err != nil {
		return nil, nil, err
	}
	framework.Pipeline().SetAddToModel("demo", func(ctx context.Context, model pipeline.Model, info *routing.RouteInfo) error {
		if info.Name != "greet" {
			return nil
		}
		greeting, err := svc.Call(ctx, "fetch", model["name"])
		if err != nil {
			return err
		}
		model["greeting"] = greeting
		return nil
	})

	return framework, pages, nil
}

func renderDemo(_ context.Context, info *routing.RouteInfo, _ *pipeline.Page, model pipeline.Model) (string, error) {
	switch info.Name {
	case "greet":
		return fmt.Sprintf("<html><body><h1>%v</h1></body></html>", model["greeting"]), nil
	default:
		return "<html><body><h1>pancakes demo</h1><p>try /greet/gopher</p></body></html>", nil
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
