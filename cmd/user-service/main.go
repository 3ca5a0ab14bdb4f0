package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/database"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/user"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadUserService()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.DB, user.Migrations)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	repo := user.NewRepository(db)
	svc := user.NewService(repo, []byte(cfg.JWTSecret), tokenTTL)
	h := user.NewHandler(svc, tokenTTL)

	app := fiber.New(fiber.Config{
		AppName:      "user-service",
		ServerHeader: "user-service",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Post("/users", h.SignUp)
	api.Post("/login", h.Login)

	friends := api.Group("/friends", auth.Middleware([]byte(cfg.JWTSecret)))
	friends.Get("", h.GetFriends)
	friends.Post("/:username", h.AddFriend)
	friends.Delete("/:username", h.RemoveFriend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("user-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down user-service")
	_ = app.Shutdown()
}
