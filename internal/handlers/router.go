package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	FrontendURL  string
	StaticDir    string
	RateLimitMax int // 0 disables the limiter
	JWTSecret    string
	RequestLog   bool
	Metrics      http.Handler
}

// NewApp wires middleware and routes around h.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(h.logger),
	})

	app.Use(recover.New())
	if cfg.RequestLog {
		app.Use(logger.New())
	}
	allowOrigins := cfg.FrontendURL
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST",
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: 1 * time.Minute,
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/translate", h.Translate)
	app.Get("/translated_audio/:filename", h.GetAudio)

	api := app.Group("/api/v1")
	if cfg.JWTSecret != "" {
		api.Use(AuthMiddleware(cfg.JWTSecret))
	}
	api.Post("/tts", h.TTS)
	api.Get("/translations", h.GetTranslations)

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			app.Static("/", cfg.StaticDir)
		}
	}

	return app
}
