package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/config"
	"github.com/tooldeck/backend/internal/http/handlers"
	"github.com/tooldeck/backend/internal/middleware"
	"github.com/tooldeck/backend/internal/rbac"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	activityHandler *handlers.ActivityHandler,
	adminUserHandler *handlers.AdminUserHandler,
	toolHandler *handlers.ToolHandler,
	reviewHandler *handlers.ReviewHandler,
	blogHandler *handlers.BlogHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Admin console: audit history and export
	admin := protected.Group("/admin", middleware.RequireStaff())
	admin.Get("/activity", middleware.RequirePermission(rbac.PermViewAuditLog), activityHandler.GetActivity)
	admin.Get("/activity/export", middleware.RequirePermission(rbac.PermExportAuditLog), activityHandler.ExportActivity)

	// User management (admin only)
	users := admin.Group("/users", middleware.RequirePermission(rbac.PermManageUsers))
	users.Post("", adminUserHandler.CreateUser)
	users.Put("/:id/role", adminUserHandler.ChangeRole)
	users.Post("/:id/block", adminUserHandler.BlockUser)
	users.Post("/:id/unblock", adminUserHandler.UnblockUser)
	users.Put("/:id", adminUserHandler.UpdateProfile)
	users.Delete("/:id", adminUserHandler.DeleteUser)

	// Content moderation
	moderation := admin.Group("", middleware.RequirePermission(rbac.PermModerateContent))
	moderation.Post("/tools", toolHandler.CreateTool)
	moderation.Put("/tools/:id", toolHandler.UpdateTool)
	moderation.Post("/tools/:id/publish", toolHandler.SetPublished)
	moderation.Delete("/tools/:id", toolHandler.DeleteTool)
	moderation.Post("/reviews/:id/visibility", reviewHandler.SetVisibility)
	moderation.Delete("/reviews/:id", reviewHandler.DeleteReview)
	moderation.Post("/posts/:id/status", blogHandler.SetStatus)
	moderation.Delete("/posts/:id", blogHandler.DeletePost)

	// Live audit feed
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
