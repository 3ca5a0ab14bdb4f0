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

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/activity"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadActivityService()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.DB, activity.Migrations)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := activity.NewRepository(db)
	social := clients.NewSocialClient(cfg.UserServiceURL)
	svc := activity.NewService(repo, social)
	h := activity.NewHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:      "activity-service",
		ServerHeader: "activity-service",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api/v1", auth.Middleware([]byte(cfg.JWTSecret)))
	api.Get("/watched", h.ListWatched)
	api.Post("/watched/:movie_id", h.MarkWatched)
	api.Get("/watched/:movie_id", h.WatchedStatus)
	api.Get("/newsfeed", h.Newsfeed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("activity-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down activity-service")
	_ = app.Shutdown()
}
