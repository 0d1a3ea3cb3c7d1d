package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/didax-edu/site-api/internal/api/router"
	"github.com/didax-edu/site-api/internal/app/bootstrap"
	appconfig "github.com/didax-edu/site-api/internal/config"
	"github.com/didax-edu/site-api/internal/leads"
	"github.com/didax-edu/site-api/internal/observability/metrics"
	"github.com/didax-edu/site-api/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting site API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool := connectPostgresPool(ctx, cfg, logger)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cancel()
	if cfg.DatabaseURL != "" && pool == nil && cfg.IsProduction() {
		logger.Error("postgres is required in production")
		os.Exit(1)
	}

	// Initialize repositories and services
	metricsHandler, leadMetrics := setupMetrics(cfg.MetricsEnabled)
	stores := bootstrap.BuildLeadStores(pool, cfg, logger)
	throttle := bootstrap.BuildThrottle(redisClient, cfg, logger)
	leadService := leads.NewService(stores.Repository, throttle, leadMetrics, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadService, logger, cfg.BodyLimitBytes),
		CatalogHandler:     leads.NewCatalogHandler(stores.Catalog, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed to close redis", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// connectPostgresPool returns nil when DATABASE_URL is empty or unreachable,
// in which case the leads endpoints run on the in-memory store.
func connectPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *pgxpool.Pool {
	if cfg == nil || cfg.DatabaseURL == "" {
		return nil
	}
	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		return nil
	}
	logger.Info("connected to postgres", "max_conns", cfg.DBMaxConns)
	return pool
}

// setupMetrics builds a dedicated registry so /metrics only exposes what this
// service registers plus the runtime collectors.
func setupMetrics(enabled bool) (http.Handler, *metrics.LeadMetrics) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	leadMetrics := metrics.NewLeadMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), leadMetrics
}
