package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membertracker/internal/adapters/http/middleware"
	"membertracker/internal/adapters/http/routes"
	"membertracker/internal/adapters/mail"
	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/core/services"
	"membertracker/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	_ "membertracker/docs" // Swagger docs
)

// @title Member Tracker API
// @version 1.0
// @description Membership payment tracking and member communications API

// @contact.name API Support

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load configuration")
	}
	logger.Setup(cfg.AppMode, cfg.LogLevel)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to database")
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to auto migrate")
	}
	log.Info().Msg("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to seed data")
	}

	// Repositories
	tx := repositories.NewTransactor(db)
	memberRepo := repositories.NewMemberRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	commRepo := repositories.NewCommunicationRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Mail
	renderer, err := mail.NewTemplateRenderer(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load email templates")
	}
	emailService := services.NewEmailService(mail.NewSMTPTransport(cfg.Mail), renderer, cfg.Mail)
	if !cfg.Mail.Enabled {
		log.Warn().Msg("⚠️ Mail disabled, email deliveries will fail")
	}

	dispatcher := services.NewDispatcher(deliveryRepo, emailService, cfg.Dispatch)
	dispatcher.Start()

	// Services
	policy := domain.NewDefaultPolicy(domain.PolicyConfig(cfg.Policy))
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	paymentService := services.NewPaymentService(tx, memberRepo, paymentRepo, policy)
	commService := services.NewCommunicationService(tx, commRepo, deliveryRepo, memberRepo, policy, dispatcher)
	memberService := services.NewMemberService(memberRepo, paymentRepo, emailService, dispatcher)
	cronService := services.NewCronService(paymentService, commService, authService, cfg.Scheduler)

	if cfg.Dispatch.RecoverOnStartup {
		n, err := commService.RecoverPendingDeliveries(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to recover pending deliveries")
		} else if n > 0 {
			log.Info().Int("deliveries", n).Msg("🔄 Pending deliveries re-queued")
		}
	}

	if err := cronService.Start(); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start scheduler")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Member Tracker API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, routes.Services{
		Auth:          authService,
		User:          services.NewUserService(userRepo),
		Member:        memberService,
		Payment:       paymentService,
		Communication: commService,
		Dashboard:     services.NewDashboardService(memberRepo, paymentRepo, commRepo),
		Cron:          cronService,
	}, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("🚀 Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("❌ Server stopped with error")
	}

	// Listen has returned: stop background work before closing the pool
	cronService.Stop()
	dispatcher.Stop()
	if err := config.CloseDatabase(); err != nil {
		log.Error().Err(err).Msg("❌ Failed to close database")
	}
	log.Info().Msg("✅ Server stopped gracefully")
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error().Err(err).Msg("❌ Error during shutdown")
	}
}
