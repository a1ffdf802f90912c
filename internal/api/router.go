// Package api provides the HTTP API for the airsight site registry.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airqloud"
	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/auth"
	"github.com/airsight/airsight/internal/device"
	"github.com/airsight/airsight/internal/site"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	JWTService  *auth.JWTService

	SiteService   *site.Service
	DeviceService *device.Service
	AirQlouds     airqloud.Repository
	Roads         handler.RoadMetadataProvider
	DB            handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsight-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	siteHandler := handler.NewSiteHandler(cfg.SiteService, cfg.Roads)
	airqloudHandler := handler.NewAirQloudHandler(cfg.AirQlouds)
	deviceHandler := handler.NewDeviceHandler(cfg.DeviceService)

	// Create auth middleware for mutating routes
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	writeRateLimit := middleware.RateLimitByClient(middleware.WriteRateLimit)   // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Site endpoints
		r.Route("/sites", func(r chi.Router) {
			// Reads - standard rate limiting
			r.Group(func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", siteHandler.ListSites)
				r.Get("/approximate", siteHandler.ApproximateCoordinates)
				r.Get("/nearest", siteHandler.NearestSites)
				r.Get("/airqlouds", siteHandler.SiteAirQlouds)
				r.Get("/weather-station/nearest", siteHandler.NearestWeatherStation)
				r.Get("/road-metadata", siteHandler.RoadMetadata)
			})

			// Mutations - authenticated, stricter rate limiting
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(writeRateLimit)
				r.Post("/", siteHandler.CreateSite)
				r.Route("/{siteId}", func(r chi.Router) {
					r.Put("/", siteHandler.UpdateSite)
					r.Delete("/", siteHandler.DeleteSite)
					r.Post("/refresh", siteHandler.RefreshSite)
				})
			})
		})

		// AirQloud endpoints
		r.Route("/airqlouds", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", airqloudHandler.ListAirQlouds)
			r.With(authMiddleware, writeRateLimit).Post("/", airqloudHandler.CreateAirQloud)
		})

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", deviceHandler.ListDevices)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(writeRateLimit)
				r.Post("/", deviceHandler.RegisterDevice)
				r.Put("/{deviceId}", deviceHandler.UpdateDevice)
				r.Delete("/{deviceId}", deviceHandler.DeleteDevice)
			})
		})
	})

	return r
}
