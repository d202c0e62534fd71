package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/config"
	"github.com/tooldeck/backend/internal/db"
	"github.com/tooldeck/backend/internal/events"
	apphttp "github.com/tooldeck/backend/internal/http"
	"github.com/tooldeck/backend/internal/http/handlers"
	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/services"
	"github.com/tooldeck/backend/internal/sitemeta"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	toolRepo := repositories.NewToolRepo(pool)
	reviewRepo := repositories.NewReviewRepo(pool)
	blogRepo := repositories.NewBlogRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Audit writer: centralized store first, embedded mirrors per target type
	mirrors := map[string]services.LegacyAppender{
		models.TargetUser:     userRepo,
		models.TargetTool:     toolRepo,
		models.TargetReview:   reviewRepo,
		models.TargetBlogPost: blogRepo,
	}
	writer := services.NewAuditWriter(auditRepo, mirrors, publisher, cfg.AuditLegacyLogCap, log)

	// History reconciler
	resolver := services.NewStoreResolver(userRepo, toolRepo, reviewRepo, blogRepo)
	legacySources := []services.LegacySource{userRepo, toolRepo, reviewRepo, blogRepo}
	activityService := services.NewActivityService(auditRepo, legacySources, resolver, userRepo, cfg.AuditDedupTolerance, cfg.AuditDefaultWindow, cfg.AuditMaxResults, log)

	// Business services
	parser := sitemeta.NewParser(cfg.SiteMetaTimeoutMS, cfg.SiteMetaMaxRetries, log)
	userAdminService := services.NewUserAdminService(userRepo, writer, log)
	toolService := services.NewToolService(toolRepo, writer, parser, log)
	reviewService := services.NewReviewService(reviewRepo, writer, log)
	blogService := services.NewBlogService(blogRepo, writer, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, log)
	activityHandler := handlers.NewActivityHandler(activityService, log)
	adminUserHandler := handlers.NewAdminUserHandler(userAdminService, userRepo, log)
	toolHandler := handlers.NewToolHandler(toolService, userRepo, log)
	reviewHandler := handlers.NewReviewHandler(reviewService, userRepo, log)
	blogHandler := handlers.NewBlogHandler(blogService, userRepo, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, activityHandler, adminUserHandler, toolHandler, reviewHandler, blogHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
