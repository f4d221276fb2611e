package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-forge/internal/config"
	"github.com/jwebster45206/npc-forge/internal/handlers"
	"github.com/jwebster45206/npc-forge/internal/logger"
	"github.com/jwebster45206/npc-forge/internal/middleware"
	"github.com/jwebster45206/npc-forge/internal/storage"
	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Forge API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_ttl", cfg.SessionTTL)

	store, err := storage.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to configure session store", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to session store", "error", err)
		os.Exit(1)
	}

	catalogCtx, catalogCancel := context.WithTimeout(context.Background(), 30*time.Second)
	cat := catalog.LoadOrEmpty(catalogCtx, cfg.CatalogSource, log)
	catalogCancel()

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, cat, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(store, archive.NewZip(), log, cfg.MaxImportBytes)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	catalogHandler := handlers.NewCatalogHandler(cat, log)
	mux.Handle("/v1/catalog/search", catalogHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close after shutdown so in-flight requests can still save.
	if err := store.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	log.Info("Server exited")
}
