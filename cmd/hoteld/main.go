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

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"

	"hotel-ops-backend/config"
	"hotel-ops-backend/internal/api"
	"hotel-ops-backend/internal/db"
	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/logging"
	"hotel-ops-backend/internal/store"
	"hotel-ops-backend/internal/sweeper"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}
	logger.Infof("configuration loaded successfully from %s", configPath)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	gormDB, err := db.Init(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Info("database initialized successfully")

	appStore := store.NewGormStore(gormDB)

	files, err := filestore.NewLocal(cfg.Storage.Root, cfg.Storage.Subdir)
	if err != nil {
		logger.Fatalf("failed to initialize file storage: %v", err)
	}
	logger.Infof("file storage ready at %s", files.Root)

	var enforcer *casbin.Enforcer
	if cfg.Auth.Enabled {
		enforcer, err = api.NewEnforcer(cfg.Auth)
		if err != nil {
			logger.Fatalf("failed to load RBAC policy: %v", err)
		}
	} else {
		logger.Warn("auth is disabled; every route is public")
	}

	// Reconcile orphaned photos in the background
	sweeperSvc := sweeper.NewService(cfg.Sweeper, appStore, files, logger)
	go sweeperSvc.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, appStore, files, enforcer, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("Server gracefully stopped")
}
