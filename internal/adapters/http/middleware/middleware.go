package middleware

import (
	"errors"
	"time"

	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// Fallback request budgets per minute per IP when config leaves them unset
const (
	defaultAPIPerMinute  = 100
	defaultAuthPerMinute = 5
	defaultBulkPerMinute = 3
)

// Setup configures all middlewares for the application
func Setup(app *fiber.App, cfg *config.Config) {
	// Recover middleware - catches panics
	app.Use(recover.New())

	// CSV exports and member lists compress well
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
	}))

	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	// General API budget; health checks and scrapes are exempt
	app.Use(newLimiter("api", cfg.RateLimit.APIPerMinute, defaultAPIPerMinute,
		"Too many requests, please slow down",
		func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		}))

	app.Use(requestLogger(cfg))
	app.Use(cors.New(corsConfig(cfg)))
}

func requestLogger(cfg *config.Config) fiber.Handler {
	if cfg.IsDev() {
		return logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		})
	}
	// Production lines go through zerolog so they share the JSON stream
	return logger.New(logger.Config{
		Format:     "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		TimeFormat: time.RFC3339,
		Output:     log.Logger,
	})
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: "Content-Disposition",
	}
	if cfg.IsDev() {
		c.AllowOrigins = "*"
		return c
	}
	c.AllowOrigins = cfg.GetAllowedOrigins()
	c.AllowCredentials = true
	return c
}

// AuthRateLimiter guards login and register against password guessing
func AuthRateLimiter(cfg config.RateLimitConfig) fiber.Handler {
	return newLimiter("auth", cfg.AuthPerMinute, defaultAuthPerMinute,
		"Too many attempts, please wait a minute", nil)
}

// BulkRateLimiter guards whole-congregation sends and manual job runs
func BulkRateLimiter(cfg config.RateLimitConfig) fiber.Handler {
	return newLimiter("bulk", cfg.BulkPerMinute, defaultBulkPerMinute,
		"Please wait before trying again", nil)
}

func newLimiter(name string, perMinute, fallback int, message string, skip func(*fiber.Ctx) bool) fiber.Handler {
	if perMinute <= 0 {
		perMinute = fallback
	}
	return limiter.New(limiter.Config{
		Next:       skip,
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().Str("limiter", name).Str("ip", c.IP()).Str("path", c.Path()).Msg("⚠️ Rate limit reached")
			return response.Error(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// CustomErrorHandler renders errors that escape the handlers.
// Domain errors keep their code and status mapping.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	if domain.CodeOf(err) != "" {
		return response.FromError(c, err, "Request failed")
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		return response.Error(c, e.Code, e.Message)
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("❌ Unhandled error")
	return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error")
}
