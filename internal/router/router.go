package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appLogger "github.com/FACorreiaa/notion-city-proxy/app/logger"
	appMiddleware "github.com/FACorreiaa/notion-city-proxy/app/middleware"
	"github.com/FACorreiaa/notion-city-proxy/app/observability/metrics"
	"github.com/FACorreiaa/notion-city-proxy/internal/api/city"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.AppMetrics
	CityHandler    *city.Handler
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// SetupRouter builds the application router with the server-wide
// middleware chain. CORS is only applied under /api.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(appMiddleware.HTTPMetrics(cfg.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Get("/get-cities", cfg.CityHandler.GetAllCities)
	})

	return r
}
