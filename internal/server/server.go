// Package server contains the HTTP handlers for the vibe-tweet API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "vibetweet/docs" // swagger docs
	"vibetweet/internal/bootstrap"
	"vibetweet/internal/config"
	"vibetweet/internal/database"
	"vibetweet/internal/events"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/llm"
	"vibetweet/internal/middleware"
	"vibetweet/internal/models"
	"vibetweet/internal/service"
	"vibetweet/internal/trends"
	"vibetweet/internal/xsource"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName    = "vibe-tweet"
	apiName        = "Vibe Tweet API"
	apiVersion     = "0.1.0"
	analysisBudget = 30 * time.Second
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	featureFlags   *featureflags.Manager
	bus            *events.Bus
	registry       *llm.Registry
	trends         *trends.Service

	userService        *service.UserService
	preferencesService *service.PreferencesService
	tweetService       *service.TweetService
	styleService       *service.StyleService
	generationService  *service.GenerationService
}

// Options carries collaborators that tests or the bootstrap layer may supply.
// Nil fields are built from the configuration.
type Options struct {
	Registry *llm.Registry
	Trends   *trends.Service
	Fetcher  service.TweetFetcher
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	registry, err := bootstrap.NewProviderRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm providers: %w", err)
	}
	if len(registry.Names()) == 0 {
		middleware.Logger.Warn("no LLM provider configured, generation will answer 503")
	}

	return NewServerWithDeps(cfg, db, redisClient, Options{
		Registry: registry,
		Fetcher:  xsource.NewClient(),
	})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// It also starts the background subscriber that reanalyzes styles after imports;
// Shutdown stops it.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) (*Server, error) {
	flags := featureflags.NewManager(cfg.FeatureFlags)

	registry := opts.Registry
	if registry == nil {
		registry = llm.NewRegistry()
	}
	trendService := opts.Trends
	if trendService == nil {
		trendService = bootstrap.NewTrendService(cfg, flags)
	}

	bus := events.NewBus()
	deps := bootstrap.Deps{
		Registry:  registry,
		Trends:    trendService,
		Publisher: bus,
	}
	if opts.Fetcher != nil {
		deps.Fetcher = opts.Fetcher
	}
	svc := bootstrap.NewServices(cfg, db, deps)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:             cfg,
		db:                 db,
		redis:              redisClient,
		promMiddleware:     middleware.InitMetrics("vibetweet-api"),
		shutdownCtx:        ctx,
		shutdownFn:         cancel,
		featureFlags:       flags,
		bus:                bus,
		registry:           registry,
		trends:             trendService,
		userService:        svc.Users,
		preferencesService: svc.Preferences,
		tweetService:       svc.Tweets,
		styleService:       svc.Styles,
		generationService:  svc.Generation,
	}

	if _, err := bootstrap.WireReanalysis(ctx, bus, flags, svc.Styles, analysisBudget); err != nil {
		cancel()
		_ = bus.Close()
		return nil, err
	}
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Spans before the context middleware so the trace id reaches the logger
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		// Fiber rejects credentials together with a wildcard origin.
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Preflight requests, health checks and metrics are never limited.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || isHealthOrMetricsPath(c.Path())
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, &models.AppError{
				Code:    models.CodeRateLimited,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// isHealthOrMetricsPath reports whether path is a health or metrics endpoint.
func isHealthOrMetricsPath(path string) bool {
	switch path {
	case "/health", "/health/live", "/health/ready", "/metrics":
		return true
	}
	return false
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health", s.HealthCheck)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/", s.Root)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Vibe Tweet Metrics Dashboard",
	}))

	// Swagger documentation
	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/trends", s.GetTrends)

	users := api.Group("/users")
	users.Post("/", s.CreateUser)
	users.Get("/", s.ListUsers)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	users.Get("/:id/preferences", s.GetPreferences)
	users.Patch("/:id/preferences", s.UpdatePreferences)

	users.Post("/:id/tweets/import", s.ImportTweets)
	users.Post("/:id/tweets/import/x", s.rateLimit(5, "x_import"), s.ImportFromX)
	users.Post("/:id/tweets/generate", s.rateLimit(s.config.GenerationRateLimit, "generate"), s.GenerateTweets)
	users.Post("/:id/tweets", s.CreateTweet)
	users.Get("/:id/tweets", s.ListTweets)

	users.Get("/:id/style-profile", s.GetStyleProfile)
	users.Get("/:id/style-profile/summary", s.GetStyleSummary)
	users.Post("/:id/style-profile/refresh", s.RefreshStyleProfile)
}

// rateLimit applies a per-user limit per minute. A non-positive limit disables it.
func (s *Server) rateLimit(perMinute int, name string) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, perMinute, time.Minute, name)
}

// ErrorHandler renders errors that escape handlers in the standard error shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, &models.AppError{
			Code:    codeForStatus(fe.Code),
			Message: fe.Message,
		})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusTooManyRequests:
		return models.CodeRateLimited
	case fiber.StatusUnprocessableEntity:
		return models.CodeValidation
	case fiber.StatusServiceUnavailable:
		return models.CodeUnavailable
	}
	if status < fiber.StatusInternalServerError {
		return models.CodeBadRequest
	}
	return models.CodeInternal
}

// healthResponse keeps the field order of the /health body stable.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck handles GET /health. It never touches dependencies.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "ok", Service: serviceName})
}

// Root handles GET /
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    apiName,
		"version": apiVersion,
		"docs":    "/docs",
	})
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness check requests. Redis is optional: a
// missing client reports "disabled", a configured but failing one is unhealthy.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": serviceName,
		"version": apiVersion,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database":      dbStatus,
			"redis":         redisStatus,
			"llm_providers": s.registry.Names(),
		},
		"time": time.Now(),
	})
}

// Shutdown stops background work and closes the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				errs = append(errs, fmt.Errorf("close sql DB: %w", cerr))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.InfoContext(ctx, "Server shutdown complete")
	return errors.Join(errs...)
}
