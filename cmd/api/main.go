// Package main provides the entrypoint for the AirSight registry API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/api"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/auth"
	"github.com/airsight/airsight/internal/counter"
	"github.com/airsight/airsight/internal/database"
	"github.com/airsight/airsight/internal/device"
	"github.com/airsight/airsight/internal/events"
	"github.com/airsight/airsight/internal/metadata"
	"github.com/airsight/airsight/internal/provider/elevation"
	"github.com/airsight/airsight/internal/provider/geocode"
	"github.com/airsight/airsight/internal/provider/roads"
	"github.com/airsight/airsight/internal/provider/weather"
	"github.com/airsight/airsight/internal/site"
	"github.com/airsight/airsight/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsight-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight registry API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT verification (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize vendor clients
	mapsAPIKey := os.Getenv("MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("MAPS_API_KEY not set - metadata generation will fail")
	}

	geocoder := geocode.NewClient(geocode.ClientConfig{
		APIKey:  mapsAPIKey,
		Metrics: providerMetrics,
		Logger:  log,
	})

	altitude := elevation.NewClient(elevation.ClientConfig{
		APIKey: mapsAPIKey,
		Logger: log,
	})

	stations := weather.NewClient(weather.ClientConfig{
		Username: os.Getenv("TAHMO_API_KEY"),
		Password: os.Getenv("TAHMO_API_SECRET"),
		BaseURL:  os.Getenv("TAHMO_BASE_URL"),
		Metrics:  providerMetrics,
		Logger:   log,
	})

	roadsClient := roads.NewClient(roads.ClientConfig{
		BaseURL: os.Getenv("SPATIAL_BASE_URL"),
		Logger:  log,
	})

	generator := metadata.NewGenerator(metadata.GeneratorConfig{
		Geocoder:    geocoder,
		Altitude:    altitude,
		HomeCountry: os.Getenv("HOME_COUNTRY"),
		Logger:      log,
	})

	// Initialize event publisher (optional, requires a GCP project)
	var publisher site.EventPublisher
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		topicName := os.Getenv("SITES_TOPIC")
		if topicName == "" {
			topicName = "sites"
		}
		p, err := events.NewPublisher(ctx, events.PublisherConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize event publisher")
		}
		defer func() {
			if closeErr := p.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close event publisher")
			}
		}()
		publisher = p
		log.Info().Str("topic", topicName).Msg("event publisher initialized")
	} else {
		log.Warn().Msg("GCP_PROJECT_ID not set - site events will not be published")
	}

	// Initialize repositories and services
	siteService := site.NewService(site.ServiceConfig{
		Sites:     site.NewPostgresRepository(pool),
		Counters:  counter.NewPostgresRepository(pool),
		AirQlouds: airqloud.NewPostgresRepository(pool),
		Metadata:  generator,
		Stations:  stations,
		Publisher: publisher,
		Logger:    log,
	})
	log.Info().Msg("site service initialized")

	deviceService := device.NewService(device.NewPostgresRepository(pool))
	log.Info().Msg("device service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		JWTService:    jwtService,
		SiteService:   siteService,
		DeviceService: deviceService,
		AirQlouds:     airqloud.NewPostgresRepository(pool),
		Roads:         roadsClient,
		DB:            pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
