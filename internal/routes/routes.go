package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Lawyer *handlers.LawyerHandler
	Chat   *handlers.ChatHandler
}

func Setup(app *fiber.App, cfg *config.Config, m *metrics.Metrics, h Handlers) {
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	protected := middleware.IdentityProtected(cfg)

	// Account creation gets the stricter limit
	signup := limiter.New(limiter.Config{
		Max:               cfg.AuthRateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	api.Post("/auth/session", signup, protected, h.Auth.Session)
	api.Post("/registration/steps/:step", h.User.ValidateStep)

	users := api.Group("/users")
	users.Get("/", h.User.List)
	users.Get("/ById/:id", h.User.GetByID)
	users.Get("/:firebaseId", h.User.GetByFirebaseID)
	users.Post("/", signup, protected, h.User.Register)

	lawyers := api.Group("/lawyers")
	lawyers.Get("/", h.Lawyer.List)
	lawyers.Post("/auth/register", signup, protected, h.Lawyer.Register)
	lawyers.Get("/:id", h.Lawyer.GetByFirebaseID)
	lawyers.Put("/:id", protected, h.Lawyer.UpdateProfile)
	lawyers.Post("/:id/verification-document", protected, h.Lawyer.UploadVerificationDocument)

	chats := api.Group("/chats", protected)
	chats.Post("/createChat", h.Chat.CreateChat)
	chats.Get("/messages/:chatId", h.Chat.ListMessages)
	chats.Post("/:chatId/messages", h.Chat.SendMessage)
	chats.Put("/:chatId/read", h.Chat.MarkRead)
	chats.Get("/:id", h.Chat.ListThreads)

	admin := api.Group("/admin", protected, middleware.AdminRequired(cfg))
	admin.Put("/lawyers/:id/verification", h.Lawyer.SetVerification)
}
