package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/astropoint/skyquality/internal/api/http"
	"github.com/astropoint/skyquality/internal/config"
	"github.com/astropoint/skyquality/internal/locations"
	"github.com/astropoint/skyquality/internal/providers"
	"github.com/astropoint/skyquality/internal/scheduler"
	"github.com/astropoint/skyquality/internal/siqs"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	weather := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL)
	light := providers.NewLightPollutionProvider(httpClient, cfg.LightPollutionBaseURL, cfg.LightPollutionAPIKey)
	geocoder := providers.NewNominatimProvider(httpClient, cfg.NominatimBaseURL)

	// Core scoring service with its caches.
	service := siqs.NewService(weather, light, siqs.Config{
		ResultCapacity: cfg.ResultCacheCapacity,
		ResultTTL:      cfg.ResultCacheTTL,
		WeatherTTL:     cfg.WeatherTTL,
		LightTTL:       cfg.LightTTL,
	})

	// Location filtering with cached water exclusion.
	engine := locations.NewEngine(geocoder, cfg.GeocodeTTL)

	// Scheduler that keeps configured coordinates' scores warm.
	sched := scheduler.New(cfg.RefreshLocations, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skyquality",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skyquality",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, engine)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
