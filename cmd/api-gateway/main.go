package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/database"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/gateway"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadGateway()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      "api-gateway",
		ServerHeader: "api-gateway",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	rateLimiter := gateway.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindowSeconds)
	app.Use(rateLimiter.Handler())

	// Sign-up and login are the only unauthenticated API routes.
	app.Use(auth.Middleware(
		[]byte(cfg.JWTSecret),
		"/health", "/api/v1/users", "/api/v1/login",
	))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "api-gateway",
		})
	})

	// Fixed route table; every downstream service keeps its own path space.
	svcProxy := gateway.NewServiceProxy()

	app.All("/api/v1/users", svcProxy.ForwardTo(cfg.UserServiceURL))
	app.All("/api/v1/login", svcProxy.ForwardTo(cfg.UserServiceURL))
	app.All("/api/v1/friends", svcProxy.ForwardTo(cfg.UserServiceURL))
	app.All("/api/v1/friends/*", svcProxy.ForwardTo(cfg.UserServiceURL))

	app.All("/api/v1/watched", svcProxy.ForwardTo(cfg.ActivityServiceURL))
	app.All("/api/v1/watched/*", svcProxy.ForwardTo(cfg.ActivityServiceURL))
	app.All("/api/v1/newsfeed", svcProxy.ForwardTo(cfg.ActivityServiceURL))

	app.All("/api/v1/movies/*", svcProxy.ForwardTo(cfg.CatalogServiceURL))

	app.All("/api/v1/recommendations", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/recommendations/*", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/rating", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/rating/*", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/rating_review", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/rating_review/*", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/favorite", svcProxy.ForwardTo(cfg.PreferenceServiceURL))
	app.All("/api/v1/favorite/*", svcProxy.ForwardTo(cfg.PreferenceServiceURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("api-gateway starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down api-gateway")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}

	if err := rdb.Close(); err != nil {
		slog.Error("error closing Redis connection", "error", err)
	}

	slog.Info("api-gateway shutdown complete")
}
