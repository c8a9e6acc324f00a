package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/budget-debts/internal/cache"
	"github.com/Dan9191/budget-debts/internal/config"
	"github.com/Dan9191/budget-debts/internal/handler"
	"github.com/Dan9191/budget-debts/internal/integrations/cbr"
	"github.com/Dan9191/budget-debts/internal/middleware"
	"github.com/Dan9191/budget-debts/internal/repository"
	"github.com/Dan9191/budget-debts/internal/scheduler"
	"github.com/Dan9191/budget-debts/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	rateCache := newCache(cfg, logger)

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	cbrClient := cbr.NewCBRClient(cfg, rateCache, logger)
	svc := service.NewService(repo, cbrClient, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware(logger))
	h.Routes(r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start accrual scheduler
	sched := scheduler.New(cfg, svc, logger)
	schedErr := make(chan error, 1)
	go func() { schedErr <- sched.Start(ctx) }()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
	case err := <-schedErr:
		if err != nil {
			logger.Errorf("Scheduler failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	sched.Stop()

	logger.Info("Server exited")
}

// newCache connects to Redis when configured, otherwise keeps rates in memory
func newCache(cfg *config.Config, logger *logrus.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}

	rc := cache.NewRedisCache(cfg.RedisAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warnf("Redis unavailable at %s, using in-memory cache: %v", cfg.RedisAddr, err)
		_ = rc.Close()
		return cache.NewMemoryCache()
	}
	logger.Infof("Caching reference rates in Redis at %s", cfg.RedisAddr)
	return rc
}
