package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"pharmasocial/internal/auth"
	"pharmasocial/internal/config"
	"pharmasocial/internal/generation"
	"pharmasocial/internal/handler"
	"pharmasocial/internal/logger"
	"pharmasocial/internal/middleware"
	"pharmasocial/internal/service"
	"pharmasocial/internal/store"
	"pharmasocial/internal/view"
	"pharmasocial/web"
)

func main() {
	// --- Configuration Loading ---
	// A local .env is a convenience for development; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	if cfg.Generation.APIKey == "" {
		log.Warn("No generation API key configured; AI caption/image generation will fail until PHARMA_GENERATION_API_KEY is set.")
	}

	// --- Persistence Backend Selection ---
	contentStore, err := newStore(cfg.Store, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize persistence backend")
	}
	defer contentStore.Close()

	// --- Generation Client ---
	var generator generation.Generator = generation.NewGeminiClient(cfg.Generation)
	generator, err = generation.NewCachedGenerator(generator, cfg.Generation.CacheSize)
	if err != nil {
		log.Fatal(err, "Failed to initialize generation cache")
	}

	// --- Session Management Setup ---
	// The default in-memory store is intentional: restarting the
	// server returns everyone to the unauthenticated state.
	sessionManager := scs.New()
	sessionManager.Lifetime = time.Duration(cfg.Session.LifetimeHours) * time.Hour
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Application State Controller ---
	// Notifications live in the session so each user only ever sees
	// their own toasts.
	notifier := service.NewNotifier(sessionManager)
	contentService := service.NewContentService(contentStore, generator, notifier, log)

	log.Info("Loading content collections...")
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 15*time.Second)
	if err := contentService.Load(loadCtx); err != nil {
		cancelLoad()
		log.Fatal(err, "Failed to load content collections")
	}
	cancelLoad()
	log.Info("Content collections loaded.")

	// --- Authorization Setup ---
	log.Info("Initializing authorization...")
	enforcer, err := auth.NewEnforcer("auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)

	// --- View Template Initialization ---
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}

	// --- Dependency Injection and Handler Initialization ---
	postHandler := handler.NewPostHandler(contentService, viewService, log)
	categoryHandler := handler.NewCategoryHandler(contentService, log)
	authHandler := handler.NewAuthHandler(contentService, sessionManager, viewService, log)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	router := handler.NewRouter(postHandler, categoryHandler, authHandler, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newStore builds the persistence backend selected by configuration:
// "local" is the single-file SQLite blob store, "remote" the MySQL
// document store (migrated on startup).
func newStore(cfg config.StoreConfig, log logger.Logger) (store.Store, error) {
	switch cfg.Backend {
	case "local", "":
		log.Info(fmt.Sprintf("Using local store at %s", cfg.SQLitePath))
		return store.NewLocalStore(cfg.SQLitePath)
	case "remote":
		log.Info("Applying database migrations...")
		if err := store.ApplyMigrations(cfg.MySQLDSN, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info("Migrations applied successfully.")
		return store.NewRemoteStore(cfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want \"local\" or \"remote\")", cfg.Backend)
	}
}
