package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sendrec/showcase/internal/carousel"
	"github.com/sendrec/showcase/internal/catalog"
	"github.com/sendrec/showcase/internal/database"
	"github.com/sendrec/showcase/internal/media"
	"github.com/sendrec/showcase/internal/server"
	"github.com/sendrec/showcase/internal/storage"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	serverCfg := server.Config{
		BaseURL:          cfg.BaseURL,
		S3PublicEndpoint: cfg.S3PublicEndpoint,
		MediaOrigins:     cfg.MediaOrigins,
		AllowedOrigins:   cfg.AllowedOrigins,
		EnableDocs:       cfg.EnableDocs,
	}

	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		log.Println("database migrations applied")

		store, err := storage.New(ctx, storage.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Region:         cfg.S3Region,
			URLExpiry:      cfg.PresignExpiry,
		})
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		if len(cfg.AllowedOrigins) > 0 {
			if err := store.SetCORS(ctx, cfg.AllowedOrigins); err != nil {
				log.Printf("storage CORS configuration failed: %v", err)
			}
		}
		store.StartPruneLoop(bgCtx, cfg.PresignExpiry/2)
		log.Println("storage bucket ready")

		serverCfg.DB = db.Pool
		serverCfg.Pinger = db
		serverCfg.Storage = store
	} else {
		src, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			log.Fatalf("catalog load failed: %v", err)
		}
		serverCfg.Catalog = src
		log.Printf("catalog loaded from %s", cfg.CatalogFile)
	}

	if cfg.StaticDir != "" {
		if _, err := fs.Stat(os.DirFS(cfg.StaticDir), "index.html"); err == nil {
			serverCfg.WebFS = os.DirFS(cfg.StaticDir)
			log.Printf("serving frontend from %s", cfg.StaticDir)
		} else {
			log.Printf("no index.html in %s, SPA serving disabled", cfg.StaticDir)
		}
	}

	hub := media.NewHub()
	defer hub.Close()
	serverCfg.Hub = hub

	registry := carousel.NewRegistry(cfg.MountTTL)
	registry.StartSweeper(bgCtx, cfg.SweepInterval)
	serverCfg.Registry = registry

	srv := server.New(serverCfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("showcase listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}
