package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/unirenta/internal/pkg/metrics"
)

// routeTimeout bounds every REST handler. Registration uploads go through
// the backend's OCR step, so it gets longer.
const (
	routeTimeout    = 15 * time.Second
	registerTimeout = 45 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP; map sessions live on /ws and are not
	// counted per message.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/ws"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later", nil)
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/properties", timeout.NewWithContext(ListPropertiesHandler(deps), routeTimeout))
	v1.Get("/properties/search", timeout.NewWithContext(SearchPropertiesHandler(deps), routeTimeout))
	v1.Post("/properties/register", timeout.NewWithContext(RegisterPropertyHandler(deps), registerTimeout))
	v1.Get("/properties/:id", timeout.NewWithContext(GetPropertyHandler(deps), routeTimeout))

	v1.Get("/map/markers", timeout.NewWithContext(PropertyMarkersHandler(deps), routeTimeout))
	v1.Get("/map/universities", timeout.NewWithContext(UniversitiesInViewHandler(deps), routeTimeout))

	v1.Post("/notices/classify", timeout.NewWithContext(ClassifyNoticeHandler(deps), routeTimeout))
	v1.Post("/notices/broadcast", timeout.NewWithContext(BroadcastNoticeHandler(deps), routeTimeout))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), routeTimeout))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(MapSessionHandler(deps)))
}
