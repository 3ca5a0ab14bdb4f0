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
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/catalog"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/database"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadCatalogService()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.DB, catalog.Migrations)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	repo := catalog.NewRepository(db)
	if err := catalog.SeedIfEmpty(repo); err != nil {
		slog.Error("failed to seed catalog", "error", err)
		os.Exit(1)
	}

	svc := catalog.NewService(repo, rdb)
	h := catalog.NewHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:      "catalog-service",
		ServerHeader: "catalog-service",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api/v1", auth.Middleware([]byte(cfg.JWTSecret)))
	api.Get("/movies/list", h.ListMovies)
	api.Get("/movies/:movie_id", h.GetMovie)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("catalog-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down catalog-service")
	_ = app.Shutdown()
}
