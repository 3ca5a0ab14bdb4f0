package catalog

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
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
		"service": "catalog-service",
	})
}

// ListMovies returns either a batch lookup (movie_ids present) or the
// top-rated listing (amount).
// GET /api/v1/movies/list?amount=|movie_ids=
func (h *Handler) ListMovies(c fiber.Ctx) error {
	var movieIDs []int
	for _, raw := range c.Request().URI().QueryArgs().PeekMulti("movie_ids") {
		id, err := strconv.Atoi(string(raw))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie_ids"})
		}
		movieIDs = append(movieIDs, id)
	}

	var (
		movies []Movie
		err    error
	)
	if len(movieIDs) > 0 {
		movies, err = h.svc.GetByIDs(c.Context(), movieIDs)
	} else {
		amount := fiber.Query(c, "amount", defaultAmount)
		movies, err = h.svc.ListTopRated(c.Context(), amount)
	}
	if err != nil {
		slog.Error("failed to list movies", "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(MovieListResponse{Results: movies})
}

// GetMovie returns a single movie by ID.
// GET /api/v1/movies/:movie_id
func (h *Handler) GetMovie(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	movie, err := h.svc.GetByID(c.Context(), movieID)
	if err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(movie)
}
