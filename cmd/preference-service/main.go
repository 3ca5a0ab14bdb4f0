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
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/config"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/database"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/preference"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadPreferenceService()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.DB, preference.Migrations)
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

	repo := preference.NewRepository(db)
	svc := preference.NewService(
		repo,
		rdb,
		clients.NewSocialClient(cfg.UserServiceURL),
		clients.NewActivityClient(cfg.ActivityServiceURL),
		clients.NewCatalogClient(cfg.CatalogServiceURL),
	)
	h := preference.NewHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:      "preference-service",
		ServerHeader: "preference-service",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", h.Health)

	api := app.Group("/api/v1", auth.Middleware([]byte(cfg.JWTSecret)))

	api.Get("/recommendations", h.RecommendTopRated)
	api.Get("/recommendations/friends", h.RecommendByFriends)

	api.Get("/rating/friends", h.FriendRatings)
	api.Post("/rating/:movie_id", h.Rate)
	api.Delete("/rating/:movie_id", h.DeleteRating)

	api.Get("/rating_review", h.MyReviews)
	api.Get("/rating_review/:rating_id", h.GetReviews)
	api.Post("/rating_review/:rating_id", h.PostReview)

	api.Get("/favorite", h.ListFavorites)
	api.Get("/favorite/:movie_id", h.FavoriteStatus)
	api.Post("/favorite/:movie_id", h.AddFavorite)
	api.Delete("/favorite/:movie_id", h.RemoveFavorite)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("preference-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down preference-service")
	_ = app.Shutdown()
}
