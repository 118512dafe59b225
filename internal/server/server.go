// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"trendwise/internal/config"
	"trendwise/internal/domain/trend"
	"trendwise/internal/server/handlers"
)

// Dependencies are the services the HTTP layer exposes
type Dependencies struct {
	Trends         trend.Service
	SocialFallback handlers.SocialFallback
	Articles       handlers.ArticleGenerator
	ArticleTimeout time.Duration

	// Events enables the trend stream when set
	Events        handlers.EventSource
	EventsSubject string
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, log zerolog.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(hlog.NewHandler(log))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	trendHandler := handlers.NewTrendHandler(deps.Trends, deps.SocialFallback)
	articleHandler := handlers.NewArticleHandler(deps.Trends, deps.Articles, deps.ArticleTimeout)

	requestTimeout := cfg.WriteTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Trends API
			r.Route("/trends", func(r chi.Router) {
				r.Get("/", trendHandler.GetTrends)
				r.Post("/refresh", trendHandler.RefreshTrends)
				r.Get("/history", trendHandler.GetHistory)
			})

			// Articles API
			r.Post("/articles", articleHandler.CreateArticle)
		})
	})

	// WebSocket endpoint for refresh events
	if deps.Events != nil {
		router.Get("/ws/trends", handlers.TrendStreamHandler(deps.Events, deps.EventsSubject))
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
