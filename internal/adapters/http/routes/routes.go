package routes

import (
	"time"

	"membertracker/internal/adapters/http/handlers"
	"membertracker/internal/adapters/http/middleware"
	"membertracker/internal/config"
	"membertracker/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the application services the routes expose
type Services struct {
	Auth          *services.AuthService
	User          *services.UserService
	Member        *services.MemberService
	Payment       *services.PaymentService
	Communication *services.CommunicationService
	Dashboard     *services.DashboardService
	Cron          *services.CronService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, svc Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.User)
	memberHandler := handlers.NewMemberHandler(svc.Member, svc.Payment)
	paymentHandler := handlers.NewPaymentHandler(svc.Payment)
	commHandler := handlers.NewCommunicationHandler(svc.Communication)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	adminHandler := handlers.NewAdminHandler(svc.Cron)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", middleware.NoCacheHeaders(), healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	// Profile routes (Authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Staff routes
	memberRoutes := apiV1.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	setupMemberRoutes(memberRoutes, memberHandler)

	paymentRoutes := apiV1.Group("/payments")
	paymentRoutes.Get("/methods", middleware.PublicCache(time.Hour), paymentHandler.PaymentMethods)
	paymentRoutes.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	setupPaymentRoutes(paymentRoutes, paymentHandler)

	commRoutes := apiV1.Group("/communications")
	commRoutes.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	setupCommunicationRoutes(commRoutes, commHandler, cfg.RateLimit)

	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	adminRoutes.Get("/jobs", adminHandler.ListJobs)
	adminRoutes.Post("/jobs/:name/run", middleware.BulkRateLimiter(cfg.RateLimit), adminHandler.RunJob)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(cfg.RateLimit), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(cfg.RateLimit), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupMemberRoutes configures member routes (Staff/Admin)
func setupMemberRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	router.Get("/", handler.ListMembers)
	router.Post("/", handler.CreateMember)
	router.Get("/active", handler.ActiveMembers)
	router.Get("/inactive", handler.InactiveMembers)
	router.Get("/overdue/:months", handler.OverdueMembers)
	router.Get("/without-recent-payment/:months", handler.WithoutRecentPayment)
	router.Get("/export.csv", handler.ExportMembers)

	router.Get("/:id", handler.GetMember)
	router.Put("/:id", handler.UpdateMember)
	router.Delete("/:id", handler.DeleteMember)
	router.Get("/:id/payment-status", handler.PaymentStatus)
	router.Post("/:id/activate", handler.ActivateMember)
	router.Post("/:id/deactivate", handler.DeactivateMember)
}

// setupPaymentRoutes configures payment routes (Staff/Admin)
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	router.Get("/", handler.ListPayments)
	router.Post("/", handler.CreatePayment)
	router.Post("/record", handler.RecordPayment)
	router.Post("/reactivate", handler.ReactivateWithPayment)
	router.Get("/export.csv", handler.ExportPayments)
	router.Get("/member/:memberId", handler.MemberPayments)
	router.Get("/:id", handler.GetPayment)
}

// setupCommunicationRoutes configures communication routes (Staff/Admin)
func setupCommunicationRoutes(router fiber.Router, handler *handlers.CommunicationHandler, limits config.RateLimitConfig) {
	router.Get("/", handler.ListCommunications)
	router.Post("/", handler.CreateCommunication)
	router.Post("/send", handler.Send)
	router.Post("/send-to-all", middleware.BulkRateLimiter(limits), handler.SendToAll)
	router.Post("/send-to-overdue/:months", middleware.BulkRateLimiter(limits), handler.SendToOverdue)
	router.Get("/:id", handler.GetCommunication)
	router.Get("/:id/deliveries", handler.GetDeliveries)
}

// setupDashboardRoutes configures dashboard routes (Staff/Admin)
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/stats", middleware.PrivateCache(30*time.Second), handler.GetStats)
	router.Get("/recent-payments", handler.RecentPayments)
	router.Get("/overdue-members", handler.OverdueMembers)
	router.Get("/recent-activities", handler.RecentActivities)
}
