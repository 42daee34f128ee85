package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fittracker-api/internal/config"
	"fittracker-api/internal/database"
	"fittracker-api/internal/handlers"
	"fittracker-api/internal/ingest"
	"fittracker-api/internal/metrics"
	"fittracker-api/internal/middleware"
	"fittracker-api/internal/oauth"
	"fittracker-api/internal/strava"
	"fittracker-api/internal/weather"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fittracker-api server",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"log_level", cfg.LogLevel)

	// Open database
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("Database opened successfully")

	// Create Strava client
	stravaClient := strava.NewClient(cfg.StravaClientID, cfg.StravaClientSecret)

	// Create OAuth manager and ingestion service
	oauthManager := oauth.NewManager(cfg, db, stravaClient)
	ingestSvc := ingest.NewService(db, stravaClient, weather.NoopProvider{})

	// Create handlers
	healthHandler := handlers.NewHealthHandler(db, stravaClient)
	oauthHandler := handlers.NewOAuthHandler(oauthManager)
	usersHandler := handlers.NewUsersHandler(db)
	activitiesHandler := handlers.NewActivitiesHandler(db, ingestSvc, stravaClient)
	dashboardHandler := handlers.NewDashboardHandler(db)
	exportHandler := handlers.NewExportHandler(db)

	// Set up HTTP routes
	mux := http.NewServeMux()

	mux.Handle("GET /api/health", middleware.WrapHandler(metrics.EndpointHealth, healthHandler.HandleHealth))

	// OAuth endpoints
	mux.Handle("GET /api/auth/strava", middleware.WrapHandler(metrics.EndpointOAuthStart, oauthHandler.HandleAuthStart))
	mux.Handle("GET /api/auth/strava/callback", middleware.WrapHandler(metrics.EndpointOAuthCallback, oauthHandler.HandleCallback))

	// User endpoints
	mux.Handle("GET /api/users/{userID}", middleware.WrapHandler(metrics.EndpointUser, usersHandler.HandleGetUser))
	mux.Handle("DELETE /api/users/{userID}", middleware.WrapHandler(metrics.EndpointUser, usersHandler.HandleDeleteUser))

	// Activity endpoints
	mux.Handle("GET /api/users/{userID}/activities", middleware.WrapHandler(metrics.EndpointActivities, activitiesHandler.HandleSync))
	mux.Handle("GET /api/users/{userID}/activities/{activityID}", middleware.WrapHandler(metrics.EndpointActivity, activitiesHandler.HandleGetActivity))
	mux.Handle("GET /api/users/{userID}/activities/{activityID}/streams", middleware.WrapHandler(metrics.EndpointStreams, activitiesHandler.HandleStreams))
	mux.Handle("GET /api/users/{userID}/activities/{activityID}/laps", middleware.WrapHandler(metrics.EndpointLaps, activitiesHandler.HandleLaps))

	// Derived data endpoints
	mux.Handle("GET /api/users/{userID}/dashboard", middleware.WrapHandler(metrics.EndpointDashboard, dashboardHandler.HandleDashboard))
	mux.Handle("GET /api/users/{userID}/records", middleware.WrapHandler(metrics.EndpointRecords, dashboardHandler.HandleRecords))
	mux.Handle("GET /api/users/{userID}/achievements", middleware.WrapHandler(metrics.EndpointAchievements, dashboardHandler.HandleAchievements))
	mux.Handle("GET /api/users/{userID}/goals", middleware.WrapHandler(metrics.EndpointGoals, dashboardHandler.HandleGoals))

	// Export endpoint
	mux.Handle("GET /api/users/{userID}/export", middleware.WrapHandler(metrics.EndpointExport, exportHandler.HandleExport))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  35 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start metrics server if enabled
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort)
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			logger.Info("Metrics server listening", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Start HTTP server in background
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")

	// Shutdown HTTP servers with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}

	logger.Info("Server stopped")
}
