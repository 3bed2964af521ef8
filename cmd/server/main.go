package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.AppEnv,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		slog.Error("tracing init failed", "error", err)
		os.Exit(1)
	}

	// Store: PostgreSQL, or in-process memory for local runs
	var (
		st           store.Store
		pgLogHandler *logging.PGHandler
		cleanupDone  = make(chan struct{})
	)
	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory store; data is lost on restart")
		st = store.NewMemoryStore()
	} else {
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = store.NewGormStore(database.DB)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		logging.SetupWith(pgLogHandler)
		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)
	}

	m := metrics.New()

	// Directory cache (optional)
	var (
		directoryCache cache.DirectoryCache = cache.Noop{}
		redisCache     *cache.RedisDirectoryCache
	)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisDirectoryCache(cfg.RedisURL, cfg.DirectoryCacheTTL)
		if err != nil {
			slog.Error("redis unavailable, directory cache disabled", "error", err)
		} else {
			redisCache, directoryCache = rc, rc
		}
	}

	// Event publishing (optional)
	var (
		publisher events.Publisher = events.Noop{}
		kafkaPub  *events.KafkaPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, events.Topics{
			Messages: cfg.KafkaMessagesTopic,
			Lawyers:  cfg.KafkaLawyersTopic,
		}, cfg.KafkaPublishTimeout)
		publisher = kafkaPub
	}

	// Verification documents: MinIO, or memory
	var docs storage.DocumentStore = storage.NewMemoryStore()
	if cfg.MinioEndpoint != "" {
		ms, err := storage.NewMinioStore(storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			slog.Error("object storage init failed", "error", err)
			os.Exit(1)
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			slog.Error("object storage bucket unavailable", "bucket", cfg.MinioBucket, "error", err)
			os.Exit(1)
		}
		docs = ms
	}

	// Services
	userService := services.NewUserService(st)
	lawyerService := services.NewLawyerService(st, directoryCache, docs, publisher, m)
	chatService := services.NewChatService(st, publisher, m)

	// Handlers
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(userService),
		User:   handlers.NewUserHandler(userService),
		Lawyer: handlers.NewLawyerHandler(lawyerService),
		Chat:   handlers.NewChatHandler(chatService, userService),
	}
	if redisCache != nil {
		h.Health = handlers.NewHealthHandler(st, redisCache)
	} else {
		h.Health = handlers.NewHealthHandler(st, nil)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestScope())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.RequestMetrics(m))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, m, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			slog.Error("event publisher close error", "error", err)
		}
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	// Close database connections
	if database.DB != nil {
		if sqlDB, err := database.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
