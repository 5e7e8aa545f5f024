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

	"github.com/gin-gonic/gin"

	"seo-strategist-pipeline/internal/config"
	"seo-strategist-pipeline/internal/handlers"
	"seo-strategist-pipeline/internal/pkg/logger"
	"seo-strategist-pipeline/internal/services"
	"seo-strategist-pipeline/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting SEO strategist pipeline",
		"environment", cfg.Environment,
		"port", cfg.HTTP.Port,
		"store_backend", cfg.Store.Backend)

	backend, err := buildBackend(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize store backend")
		os.Exit(1)
	}

	workspaceStore, err := store.New(context.Background(), backend, cfg.Store.HistoryLimit, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize store")
		os.Exit(1)
	}
	defer workspaceStore.Close()

	geminiService, err := services.NewGeminiService(cfg.Gemini, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Gemini service")
		os.Exit(1)
	}

	competitorService := services.NewCompetitorService(cfg.Scraper, log)
	orchestrator := services.NewOrchestrator(geminiService, competitorService, workspaceStore, log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handlers.NewWorkflowHandler(orchestrator, workspaceStore, log).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown did not complete cleanly")
	}

	log.Info("Shutdown complete")
}

func buildBackend(cfg *config.Config, log *logger.Logger) (store.Backend, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisBackend(cfg.Store.RedisURL)
	default:
		log.Info("Using file store backend", "dir", cfg.Store.DataDir)
		return store.NewFileBackend(cfg.Store.DataDir)
	}
}
