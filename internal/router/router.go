// Package router sets up all HTTP routes and middleware chains for the blog
// API: JSON endpoints under /api, feeds at the root and static files last.
package router

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"zsblog/internal/handlers"
	"zsblog/internal/middleware"
)

// Deps carries everything the router mounts. Limiter and Static may be nil.
type Deps struct {
	Posts *handlers.Posts
	Meta  *handlers.Meta
	Feeds *handlers.Feeds

	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Static      http.Handler
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(corsHandler(d.CORSOrigins))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/tags/{tag}", d.Posts.ByTag)
			r.Get("/categories/{category}", d.Posts.ByCategory)
			r.Get("/*", d.Posts.Get)
		})

		r.Get("/tags", d.Meta.Tags)
		r.Get("/categories", d.Meta.Categories)
		r.Get("/stats", d.Meta.Stats)

		r.NotFound(apiNotFound)
	})

	// Feeds. /feed.xml is kept as an alias for older readers.
	r.Get("/rss", d.Feeds.RSS)
	r.Get("/feed.xml", d.Feeds.RSS)
	r.Get("/atom.xml", d.Feeds.Atom)

	if d.Static != nil {
		r.Handle("/*", d.Static)
	}

	return r
}

// corsHandler allows cross-origin reads from the configured origins.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Total-Count", middleware.RequestIDHeader},
		MaxAge:         600,
	})
	return c.Handler
}

// StaticDir serves files from dir, or returns nil when dir does not exist.
func StaticDir(dir string) http.Handler {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		slog.Info("static directory not found, skipping", "dir", dir)
		return nil
	}
	return http.FileServer(http.Dir(dir))
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not found"}`))
}
