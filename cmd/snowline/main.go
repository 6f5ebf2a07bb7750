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

	httpapi "github.com/valleyviewvt/snowline/internal/api/http"
	"github.com/valleyviewvt/snowline/internal/cache"
	"github.com/valleyviewvt/snowline/internal/config"
	"github.com/valleyviewvt/snowline/internal/digest"
	"github.com/valleyviewvt/snowline/internal/email"
	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/mountain/adapters"
	"github.com/valleyviewvt/snowline/internal/scheduler"
	"github.com/valleyviewvt/snowline/internal/subscribers"
	"github.com/valleyviewvt/snowline/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Two-tier cache in front of the adapters.
	dataCache := cache.New(cfg.CacheDir)

	// Weather collaborator shared by all adapters.
	wx := weather.NewClient(httpClient)

	// Per-resort adapters. The set is closed; each resort family has its own
	// parsing and reconciliation rules.
	var resortAdapters []mountain.Adapter
	for _, rc := range adapters.VailResorts() {
		resortAdapters = append(resortAdapters, adapters.NewVailAdapter(httpClient, wx, rc))
	}
	feed := adapters.NewMtnPowderClient(httpClient, cfg.MtnPowderToken, cfg.MtnPowderResortID)
	resortAdapters = append(resortAdapters, adapters.NewStrattonAdapter(httpClient, wx, feed))

	service := mountain.NewService(dataCache, cfg.CacheTTL, resortAdapters...)

	// Subscriber store and digest job; disabled without database settings.
	var (
		store     *subscribers.Store
		digestJob *digest.Job
	)
	if cfg.Database.Host != "" {
		store, err = subscribers.Open(cfg.Database)
		if err != nil {
			log.Fatalf("failed to open subscriber store: %v", err)
		}
		defer store.Close()

		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureSchema(schemaCtx); err != nil {
			cancel()
			log.Fatalf("failed to prepare subscriber schema: %v", err)
		}
		cancel()

		sender := email.NewSender(cfg.ResendAPIKey, cfg.EmailFrom)
		digestJob = digest.New(service, store, sender)
	} else {
		log.Println("INFO: DB_HOST not set; subscriptions and digests disabled")
	}

	// Scheduler keeps the cache warm and fires the daily digest.
	var digestRunner scheduler.DigestRunner
	if digestJob != nil {
		digestRunner = digestJob
	}
	sched := scheduler.New(service, cfg.PrewarmInterval, digestRunner, cfg.DigestHour)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "snowline",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
			"service": "snowline",
			"resorts": service.Slugs(),
		})
	})

	// API routes.
	deps := httpapi.Deps{
		Service:      service,
		DigestSecret: cfg.DigestSecret,
	}
	if store != nil {
		deps.Store = store
	}
	if digestJob != nil {
		deps.Digest = digestJob
	}
	httpapi.RegisterRoutes(app, deps)

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
