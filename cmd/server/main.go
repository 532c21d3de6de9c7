package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
	api "github.com/yourname/nutritracker/internal/api"
	"github.com/yourname/nutritracker/internal/auth"
	"github.com/yourname/nutritracker/internal/config"
	"github.com/yourname/nutritracker/internal/realtime"
	"github.com/yourname/nutritracker/internal/service"
	"github.com/yourname/nutritracker/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	hub := realtime.NewHub(logger)
	controller := service.NewController(service.Options{
		Store: store,
		AI: ai.NewClient(ai.Options{
			BaseURL:   cfg.AIBaseURL,
			FoodModel: cfg.AIFoodModel,
			PlanModel: cfg.AIPlanModel,
			Timeout:   cfg.AITimeout,
		}, logger),
		Notifier: hub,
		Logger:   logger,
	})
	app := api.NewApp(logger, controller, hub)
	router := api.NewRouter(app, auth.NewProvider(cfg, logger))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("Server running on %s (env=%s, storage=%s)", cfg.HTTPAddr, cfg.Env, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited properly")
}
