// Package main provides the entrypoint for the AirSight refresh worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/counter"
	"github.com/airsight/airsight/internal/database"
	"github.com/airsight/airsight/internal/metadata"
	"github.com/airsight/airsight/internal/provider/elevation"
	"github.com/airsight/airsight/internal/provider/geocode"
	"github.com/airsight/airsight/internal/provider/weather"
	"github.com/airsight/airsight/internal/site"
	"github.com/airsight/airsight/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsight-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight refresh worker")

	// Worker also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize vendor clients
	mapsAPIKey := os.Getenv("MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("MAPS_API_KEY not set - metadata generation will fail")
	}

	geocoder := geocode.NewClient(geocode.ClientConfig{
		APIKey: mapsAPIKey,
		Logger: log,
	})

	altitude := elevation.NewClient(elevation.ClientConfig{
		APIKey: mapsAPIKey,
		Logger: log,
	})

	stations := weather.NewClient(weather.ClientConfig{
		Username: os.Getenv("TAHMO_API_KEY"),
		Password: os.Getenv("TAHMO_API_SECRET"),
		BaseURL:  os.Getenv("TAHMO_BASE_URL"),
		Logger:   log,
	})

	generator := metadata.NewGenerator(metadata.GeneratorConfig{
		Geocoder:    geocoder,
		Altitude:    altitude,
		HomeCountry: os.Getenv("HOME_COUNTRY"),
		Logger:      log,
	})

	siteService := site.NewService(site.ServiceConfig{
		Sites:     site.NewPostgresRepository(pool),
		Counters:  counter.NewPostgresRepository(pool),
		AirQlouds: airqloud.NewPostgresRepository(pool),
		Metadata:  generator,
		Stations:  stations,
		Logger:    log,
	})

	refreshConfig := worker.DefaultRefreshConfig()
	if tenants := os.Getenv("REFRESH_TENANTS"); tenants != "" {
		refreshConfig.Tenants = strings.Split(tenants, ",")
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: refreshConfig,
		Sites:  siteService,
		Logger: log,
	})

	// Initialize Pub/Sub handler
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		log.Fatal().Msg("GCP_PROJECT_ID is required")
	}
	subscriptionName := os.Getenv("REFRESH_SUBSCRIPTION")
	if subscriptionName == "" {
		subscriptionName = "site-refresh-jobs"
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscriptionName,
		RefreshJob:       refreshJob,
		Pinger:           pool,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	// Health check server for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start the subscriber; Receive blocks until the context is cancelled.
	go func() {
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub handler stopped")
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
