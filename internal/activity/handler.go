package activity

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
func (h *Handler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "activity-service",
	})
}

// MarkWatched records a watch event for the caller.
// POST /api/v1/watched/:movie_id
func (h *Handler) MarkWatched(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	watchedAt, err := parseTimestamp(fiber.Query(c, "watched_at", ""))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid watched_at timestamp"})
	}

	event, err := h.svc.MarkWatched(auth.UserID(c), movieID, watchedAt)
	if err != nil {
		slog.Error("failed to mark watched", "user_id", auth.UserID(c), "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to mark movie as watched"})
	}

	return c.JSON(fiber.Map{
		"message":    "movie marked as watched",
		"watched_at": event.WatchedAt,
	})
}

// WatchedStatus reports whether the caller has watched a movie.
// GET /api/v1/watched/:movie_id
func (h *Handler) WatchedStatus(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	watched, err := h.svc.IsWatched(auth.UserID(c), movieID)
	if err != nil {
		slog.Error("failed to check watched status", "user_id", auth.UserID(c), "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to check watched status"})
	}

	return c.JSON(fiber.Map{"watched": watched})
}

// ListWatched returns watch events filtered by user_id, movie_id and since.
// GET /api/v1/watched?user_id=&movie_id=&since=
func (h *Handler) ListWatched(c fiber.Ctx) error {
	var filter ListFilter

	for _, raw := range c.Request().URI().QueryArgs().PeekMulti("user_id") {
		id, err := strconv.Atoi(string(raw))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user_id"})
		}
		filter.UserIDs = append(filter.UserIDs, id)
	}
	for _, raw := range c.Request().URI().QueryArgs().PeekMulti("movie_id") {
		id, err := strconv.Atoi(string(raw))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie_id"})
		}
		filter.MovieIDs = append(filter.MovieIDs, id)
	}

	since, err := parseTimestamp(fiber.Query(c, "since", ""))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid since timestamp"})
	}
	filter.Since = since

	events, err := h.svc.ListWatched(filter)
	if err != nil {
		slog.Error("failed to list watch events", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list watch events"})
	}

	return c.JSON(WatchedListResponse{Results: events})
}

// Newsfeed returns the caller's friends' watch events, newest first.
// GET /api/v1/newsfeed
func (h *Handler) Newsfeed(c fiber.Ctx) error {
	feed, err := h.svc.Newsfeed(c.Context(), auth.Token(c), auth.UserID(c))
	if err != nil {
		var upstream *apierrs.UpstreamError
		if errors.As(err, &upstream) {
			slog.Warn("newsfeed friend lookup failed", "user_id", auth.UserID(c), "error", err)
			return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{
				Error: "failed to fetch friends: " + upstream.Message,
			})
		}
		slog.Error("failed to build newsfeed", "user_id", auth.UserID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build newsfeed"})
	}

	return c.JSON(WatchedListResponse{Results: feed})
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
