package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"kino/config"
	"kino/handlers"
	"kino/internal/database"
	"kino/internal/images"
	"kino/internal/middleware"
	"kino/services/auth"
	"kino/services/catalog"
	"kino/services/collections"
	"kino/services/library"
	"kino/services/recommend"
	"kino/services/reviews"
	"kino/services/storage"
	"kino/utils"
)

func main() {
	configPath := flag.String("config", "data/settings.json", "path to the settings file")
	flag.Parse()

	manager := config.NewManager(*configPath)
	settings, err := manager.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load settings: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(settings.Logging)
	slog.SetDefault(logger)
	logger.Info("kino.starting", "config", *configPath)

	if settings.TMDB.APIKey == "" {
		logger.Warn("kino.no_api_key", "hint", "set KINO_TMDB_API_KEY or tmdb.apiKey in the settings file")
	}

	db, err := database.Open(database.Config{Path: settings.Database.Path})
	if err != nil {
		logger.Error("kino.database_open_failed", "path", settings.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	adapter := storage.NewAdapter(db.KV, logger)

	gate, err := auth.NewGate(adapter, logger)
	if err != nil {
		logger.Error("kino.session_restore_failed", "error", err)
		os.Exit(1)
	}
	authService := auth.NewService(db.Users, gate, logger)

	store, err := library.NewStore(gate, adapter, logger)
	if err != nil {
		logger.Error("kino.library_load_failed", "error", err)
		os.Exit(1)
	}

	catalogClient := catalog.NewClient(settings.TMDB.APIKey, logger,
		catalog.WithBaseURL(settings.TMDB.BaseURL),
		catalog.WithLanguage(settings.TMDB.Language),
	)

	engine := recommend.NewEngine(catalogClient, store, logger)
	store.Subscribe(func(ev library.Event) {
		if ev.Kind == library.EventWatchlist {
			engine.OnWatchlistChanged(ev.Watchlist)
		}
	})
	// seed recommendations from the persisted watchlist
	engine.OnWatchlistChanged(store.Watchlist())

	collectionService, err := collections.NewService(gate, adapter, logger)
	if err != nil {
		logger.Error("kino.collections_load_failed", "error", err)
		os.Exit(1)
	}
	reviewService := reviews.NewService(db.Reviews, gate, logger)

	imageCache := images.NewCache(afero.NewOsFs(), settings.ImageCache.Dir, settings.TMDB.ImageBaseURL, logger)

	router := utils.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	limiter := middleware.NewRateLimiter(settings.RateLimit.RequestsPerMinute, settings.RateLimit.Burst)
	router.Use(limiter.Middleware)

	handlers.RegisterRoutes(router, handlers.Deps{
		Auth:        handlers.NewAuthHandler(authService, gate),
		Library:     handlers.NewLibraryHandler(store, engine),
		Catalog:     handlers.NewCatalogHandler(catalogClient),
		Collections: handlers.NewCollectionsHandler(collectionService),
		Reviews:     handlers.NewReviewsHandler(reviewService),
		Images:      handlers.NewImagesHandler(imageCache),
	})

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("kino.listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("kino.server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("kino.shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("kino.shutdown_timeout", "error", err)
	}
	engine.Close()
	logger.Info("kino.stopped")
}

// setupLogger builds the process logger: rotating file plus stdout.
func setupLogger(settings config.LoggingSettings) *slog.Logger {
	var out io.Writer = os.Stdout
	if settings.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    settings.MaxSizeMB,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAgeDays,
			Compress:   true,
		})
	}

	level := slog.LevelInfo
	switch settings.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
