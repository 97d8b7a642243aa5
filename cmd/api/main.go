package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/northlane/feedsync/internal/config"
	"github.com/northlane/feedsync/internal/database"
	"github.com/northlane/feedsync/internal/feed"
	"github.com/northlane/feedsync/internal/handlers"
	"github.com/northlane/feedsync/internal/models"
	"github.com/northlane/feedsync/internal/reconcile"
	"github.com/northlane/feedsync/internal/services/reconciler"
	"golang.org/x/time/rate"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.AdminUser{},
		&models.DataSource{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ExternalProductMapping{},
		&models.SyncRun{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire the reconciliation pipeline
	store := reconcile.NewGormStore(db.DB)
	fetcher := feed.NewFetcher(
		&http.Client{Timeout: cfg.Sync.FetchTimeout},
		rate.NewLimiter(rate.Limit(cfg.Sync.FetchRateLimit), 1),
	)
	executor := reconcile.NewExecutor(store, feed.FallbackToProductID)
	runner := reconcile.NewRunner(fetcher, store, executor, cfg.Sync.FailureRatio)

	svc := reconciler.New(store, runner, reconciler.Config{
		Interval:      cfg.Sync.Interval,
		MaxConcurrent: cfg.Sync.MaxConcurrent,
	})
	svc.Start()

	// 5. Set up HTTP router
	router := handlers.NewRouter(db, svc, cfg.JWTSecret)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop the reconciler service
	svc.Stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
