package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/wiedertv/BizAway-code-challenge/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID, " + sessionHeader,
		ExposeHeaders: "X-Request-ID, ETag, Link, " + sessionHeader,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID; an incoming X-Request-ID is reused
	app.Use(requestid.New())

	// Request-scoped logger in the user context
	app.Use(RequestIDLogMiddleware())

	// Access logs
	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiterConfig(deps, cfg)))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(legacyRoutes))
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout; fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
	app.Get("/v1/health/detailed", DetailedHealthHandler(deps))

	// REST API v1 with a per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/trips/search", timeout.NewWithContext(SearchTripsHandler(deps), requestTimeout))
	v1.Get("/airports", SupportedAirportsHandler())
	v1.Post("/saved-trips", timeout.NewWithContext(SaveTripHandler(deps), requestTimeout))
	v1.Get("/saved-trips", timeout.NewWithContext(ListSavedTripsHandler(deps), requestTimeout))
	v1.Delete("/saved-trips/:id", timeout.NewWithContext(DeleteSavedTripHandler(deps), requestTimeout))

	// Legacy unversioned alias
	app.Get("/trips/search", timeout.NewWithContext(SearchTripsHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", WebSocketUpgrade())
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Events)))
}

func limiterConfig(deps *Dependencies, cfg RouterConfig) limiter.Config {
	max := cfg.RateLimitMax
	if max <= 0 {
		max = 100
	}
	window := time.Duration(cfg.RateLimitWindow) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	lc := limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/v1/health") || p == "/v1/ready"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}
	// Shared counters across instances when Valkey is configured
	if deps.Limiter != nil {
		lc.Storage = deps.Limiter
	}
	return lc
}
