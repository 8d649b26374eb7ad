package server

import (
	"dashcache/internal/handlers"
	"dashcache/internal/middlewares"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// queryTimeout bounds streamed query requests, which can page for a while.
const queryTimeout = 5 * time.Minute

func setupRouter(ctx *middlewares.AppContext) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)

	r.Use(middlewares.AppContextMiddleware(ctx))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ctx.Config.CORS.AllowedOrigins,
		AllowedMethods:   ctx.Config.CORS.AllowedMethods,
		AllowedHeaders:   ctx.Config.CORS.AllowedHeaders,
		ExposedHeaders:   ctx.Config.CORS.ExposedHeaders,
		AllowCredentials: ctx.Config.CORS.AllowCredentials,
		MaxAge:           ctx.Config.CORS.MaxAgeSeconds,
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(queryTimeout)).Post("/query", ctx.HandlerFunc(handlers.POSTQuery))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(middleware.Compress(5))

			r.Get("/query-types", ctx.HandlerFunc(handlers.GETQueryTypes))
			r.Get("/metrics", ctx.HandlerFunc(handlers.GETMetrics))
			r.Get("/dimensions/keys", ctx.HandlerFunc(handlers.GETDimensionKeys))
			r.Get("/dimensions/{key}/values", ctx.HandlerFunc(handlers.GETDimensionValues))

			r.Get("/panels", ctx.HandlerFunc(handlers.GETPanels))
			r.Get("/panels/{name}", ctx.HandlerFunc(handlers.GETPanel))

			r.Get("/cache", ctx.HandlerFunc(handlers.GETCacheStats))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", ctx.HandlerFunc(handlers.HandlerHealth))
		})
	})

	return r
}

func setupDebugRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/debug", middleware.Profiler())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
