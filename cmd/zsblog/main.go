// Package main is the entry point for the zsblog content API server.
// It loads configuration, connects to optional services, sets up routing,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"zsblog/internal/cache"
	"zsblog/internal/config"
	"zsblog/internal/content"
	"zsblog/internal/database"
	"zsblog/internal/feed"
	"zsblog/internal/handlers"
	"zsblog/internal/logging"
	"zsblog/internal/markdown"
	"zsblog/internal/middleware"
	"zsblog/internal/router"
	"zsblog/internal/store"
	"zsblog/internal/views"
)

var _ views.Counter = (*store.PostStore)(nil)

func main() {
	// Load configuration from .env and environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		JSON:       !cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"content_dir", cfg.ContentDir,
		"views_backend", cfg.ViewsBackend,
	)

	// PostgreSQL mirror (optional).
	var (
		db        *sql.DB
		postStore *store.PostStore
		mirror    *handlers.Mirror
	)
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		postStore = store.NewPostStore(db)
		mirror = handlers.NewMirror(postStore, store.NewViewLogStore(db))
	} else {
		slog.Warn("database not configured, mirror disabled")
	}

	// Valkey feed cache and counter (optional).
	var (
		valkeyClient *redis.Client
		pageCache    *cache.PageCache
	)
	if cfg.ValkeyHost != "" {
		valkeyClient, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
		// Site settings may have changed since the last run.
		pageCache.InvalidateAll(context.Background())
	} else {
		slog.Warn("valkey not configured, feed cache disabled")
	}

	counter, err := newCounter(cfg, valkeyClient, postStore)
	if err != nil {
		slog.Error("failed to initialize view counter", "error", err)
		os.Exit(1)
	}

	var cacheTTL time.Duration
	if cfg.CachePosts {
		cacheTTL = cfg.CacheTTL
	}
	library := content.NewLibrary(os.DirFS(cfg.ContentDir), content.Options{
		DefaultAuthor: cfg.DefaultAuthor,
		Workers:       cfg.LoadWorkers,
		CacheTTL:      cacheTTL,
	})

	renderer := markdown.New(markdown.Options{})
	site := feed.Site{
		Title:       cfg.SiteTitle,
		Description: cfg.SiteDescription,
		URL:         cfg.SiteURL,
		Language:    cfg.SiteLanguage,
		Generator:   "zsblog",
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Posts:       handlers.NewPosts(library, renderer, counter, mirror),
		Meta:        handlers.NewMeta(library, counter),
		Feeds:       handlers.NewFeeds(library, renderer, pageCache, site, cfg.FeedLimit),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Static:      router.StaticDir(cfg.PublicDir),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newCounter picks the view counter backend named by VIEWS_BACKEND.
// A postgres backend without a database degrades to no counting.
func newCounter(cfg *config.Config, valkeyClient *redis.Client, postStore *store.PostStore) (views.Counter, error) {
	switch cfg.ViewsBackend {
	case config.ViewsNone:
		return views.Nop{}, nil
	case config.ViewsValkey:
		if valkeyClient == nil {
			return nil, fmt.Errorf("valkey views backend without a valkey client")
		}
		return views.NewValkeyCounter(valkeyClient, views.DefaultValkeyKey), nil
	case config.ViewsPostgres:
		if postStore == nil {
			slog.Warn("postgres views backend without a database, view counting disabled")
			return views.Nop{}, nil
		}
		return postStore, nil
	default:
		return views.NewFileCounter(cfg.ViewsFile)
	}
}
