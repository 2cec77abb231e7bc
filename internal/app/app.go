// Package app wires the chart data service: dataset registry, chart engine,
// services, and the HTTP router with its middleware stack.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kmmelissat/analisis-al-instante-api/internal/api"
	"github.com/kmmelissat/analisis-al-instante-api/internal/chart"
	"github.com/kmmelissat/analisis-al-instante-api/internal/config"
	"github.com/kmmelissat/analisis-al-instante-api/internal/middleware"
	"github.com/kmmelissat/analisis-al-instante-api/internal/registry"
	"github.com/kmmelissat/analisis-al-instante-api/internal/service/chartdata"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// Services groups the service pointers the API handler needs.
type Services struct {
	ChartData *chartdata.Service
}

// App holds the fully-wired application.
type App struct {
	Registry *registry.Registry
	Engine   *chart.Engine
	Services Services
	Handler  *api.Handler
	// Router is the root http.Handler with the middleware stack applied.
	Router http.Handler
}

// New wires the registry, engine, services and router from deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := registry.New(cfg.MaxDatasets)
	eng := chart.NewEngine()
	chartSvc := chartdata.NewService(reg, eng, chartdata.Config{
		Timeout:          cfg.ChartTimeout,
		BatchConcurrency: cfg.BatchConcurrency,
	}, logger)
	handler := api.NewHandler(chartSvc, reg, cfg.MaxBodyBytes, logger)

	return &App{
		Registry: reg,
		Engine:   eng,
		Services: Services{ChartData: chartSvc},
		Handler:  handler,
		Router:   newRouter(cfg, logger, handler),
	}, nil
}

func newRouter(cfg *config.Config, logger *slog.Logger, handler *api.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	handler.Register(r)
	return r
}
