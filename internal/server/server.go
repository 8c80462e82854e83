package server

import (
	"log"

	"docvault-be/internal/bootstrap"
	"docvault-be/internal/config"
	"docvault-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    (cfg.Ingest.MaxFileSizeMB + 1) * 1024 * 1024,
		ErrorHandler: serverutils.NewErrorHandler(container.Logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(serverutils.NewIdentityMiddleware(cfg.App.JwtSecret))
	api.Use(resolveUser(c))

	c.DocumentController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.FeedbackController.RegisterRoutes(api)
}

// resolveUser maps the verified token subject to a local user and tenant,
// provisioning both on first sight. Everything downstream reads the ids
// from locals via serverutils.TenantFromCtx.
func resolveUser(c *bootstrap.Container) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		subject, _ := ctx.Locals("subject_id").(string)
		email, _ := ctx.Locals("subject_email").(string)

		user, err := c.UserService.Resolve(ctx.Context(), subject, email)
		if err != nil {
			return err
		}

		ctx.Locals("tenant_id", user.TenantId)
		ctx.Locals("user_id", user.Id)
		return ctx.Next()
	}
}
