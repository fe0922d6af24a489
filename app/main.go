package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/indisnews/trendit-server/app/api"
	"github.com/indisnews/trendit-server/app/cfg"
	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/storage"
	"github.com/indisnews/trendit-server/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local development; real deployments use the
	// environment directly
	_ = godotenv.Load()

	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	log.Println("Starting Trend IT server...")

	// Database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(
		appConfig.DBHost, appConfig.DBPort, appConfig.DBUser,
		appConfig.DBPassword, appConfig.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Printf("Connected to database successfully")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database migrations applied (version: %d, dirty: %t)", version, dirty)

	// Initialize repositories
	newsRepo := database.NewNewsRepository(db)
	commentRepo := database.NewCommentRepository(db)
	rankingRepo := database.NewRankingRepository(db)

	// Object storage for article images
	imageStore := storage.NewClient(appConfig.StorageURL, appConfig.StorageKey, appConfig.StorageBucket)

	// Background image reconciliation
	if appConfig.StorageURL != "" && appConfig.ReconcileInterval > 0 {
		log.Printf("Starting background scheduler with %d workers...", appConfig.WorkerCount)
		taskScheduler := tasks.NewScheduler(newsRepo, imageStore,
			time.Duration(appConfig.ReconcileInterval)*time.Second, appConfig.WorkerCount)
		taskScheduler.Start()
		defer taskScheduler.Stop()
	} else {
		log.Println("Image reconciliation disabled")
	}

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(newsRepo, commentRepo, rankingRepo, imageStore, appConfig)
	server := api.NewServer(apiHandler, appConfig.AdminPassword)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Public news:   http://localhost:%s/api/news", appConfig.Port)
		log.Printf("  RSS feed:      http://localhost:%s/rss.xml", appConfig.Port)
		log.Printf("  Sitemap:       http://localhost:%s/sitemap.xml", appConfig.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appConfig.Port)
		log.Printf("  Admin:         http://localhost:%s/admin/dashboard (gated)", appConfig.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Trend IT server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("Trend IT server shutdown complete")
}
