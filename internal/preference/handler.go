package preference

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
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

// MovieListResponse wraps resolved movie results.
type MovieListResponse struct {
	Results []clients.Movie `json:"results"`
}

// Health returns service health status.
func (h *Handler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "preference-service",
	})
}

// RecommendByFriends returns the friend-weighted recommendations.
// GET /api/v1/recommendations/friends?amount=
func (h *Handler) RecommendByFriends(c fiber.Ctx) error {
	amount := fiber.Query(c, "amount", defaultAmount)

	movies, err := h.svc.RecommendByFriends(c.Context(), auth.Token(c), auth.UserID(c), amount)
	if err != nil {
		slog.Error("failed to recommend by friends", "user_id", auth.UserID(c), "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(MovieListResponse{Results: movies})
}

// RecommendTopRated returns the rating-based recommendations.
// GET /api/v1/recommendations?amount=
func (h *Handler) RecommendTopRated(c fiber.Ctx) error {
	amount := fiber.Query(c, "amount", defaultAmount)

	movies, err := h.svc.RecommendTopRated(c.Context(), auth.Token(c), amount)
	if err != nil {
		slog.Error("failed to recommend top rated", "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(MovieListResponse{Results: movies})
}

// Rate rates a movie the caller has watched.
// POST /api/v1/rating/:movie_id
func (h *Handler) Rate(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	var req RateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	rating, err := h.svc.Rate(c.Context(), auth.Token(c), auth.UserID(c), movieID, req)
	if err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":   "rating added successfully",
		"rating_id": rating.RatingID,
	})
}

// DeleteRating removes the caller's rating of a movie.
// DELETE /api/v1/rating/:movie_id
func (h *Handler) DeleteRating(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	if err := h.svc.DeleteRating(auth.UserID(c), movieID); err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"message": "rating deleted successfully"})
}

// FriendRatings returns the caller's friends' ratings.
// GET /api/v1/rating/friends?movie_id=
func (h *Handler) FriendRatings(c fiber.Ctx) error {
	movieID := fiber.Query(c, "movie_id", 0)

	ratings, err := h.svc.FriendRatings(c.Context(), auth.Token(c), movieID)
	if err != nil {
		slog.Error("failed to list friend ratings", "user_id", auth.UserID(c), "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(RatingListResponse{Results: ratings})
}

// PostReview records an agree/disagree vote on a rating. A false vote is
// valid; only an absent agreed field is rejected.
// POST /api/v1/rating_review/:rating_id
func (h *Handler) PostReview(c fiber.Ctx) error {
	ratingID := fiber.Params[int](c, "rating_id")
	if ratingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid rating ID"})
	}

	var req ReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Agreed == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "agreed value is required, either true or false",
		})
	}

	review, err := h.svc.PostReview(auth.UserID(c), ratingID, *req.Agreed)
	if err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":          "rating review added successfully",
		"rating_review_id": review.RatingReviewID,
	})
}

// GetReviews returns all review votes on a rating.
// GET /api/v1/rating_review/:rating_id
func (h *Handler) GetReviews(c fiber.Ctx) error {
	ratingID := fiber.Params[int](c, "rating_id")
	if ratingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid rating ID"})
	}

	reviews, err := h.svc.GetReviews(ratingID)
	if err != nil {
		slog.Error("failed to list rating reviews", "rating_id", ratingID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list rating reviews"})
	}

	return c.JSON(RatingReviewListResponse{Results: reviews})
}

// MyReviews returns the caller's review votes.
// GET /api/v1/rating_review
func (h *Handler) MyReviews(c fiber.Ctx) error {
	reviews, err := h.svc.MyReviews(auth.UserID(c))
	if err != nil {
		slog.Error("failed to list own rating reviews", "user_id", auth.UserID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list rating reviews"})
	}

	return c.JSON(RatingReviewListResponse{Results: reviews})
}

// AddFavorite adds a movie to the caller's favorites.
// POST /api/v1/favorite/:movie_id
func (h *Handler) AddFavorite(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	added, err := h.svc.AddFavorite(auth.UserID(c), movieID)
	if err != nil {
		slog.Error("failed to add favorite", "user_id", auth.UserID(c), "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to add favorite"})
	}

	if !added {
		return c.JSON(fiber.Map{"message": "movie already in favorites"})
	}
	return c.JSON(fiber.Map{"message": "movie added to favorites"})
}

// RemoveFavorite removes a movie from the caller's favorites.
// DELETE /api/v1/favorite/:movie_id
func (h *Handler) RemoveFavorite(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	removed, err := h.svc.RemoveFavorite(auth.UserID(c), movieID)
	if err != nil {
		slog.Error("failed to remove favorite", "user_id", auth.UserID(c), "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to remove favorite"})
	}

	if !removed {
		return c.JSON(fiber.Map{"message": "movie not in favorites"})
	}
	return c.JSON(fiber.Map{"message": "movie removed from favorites"})
}

// FavoriteStatus reports whether a movie is in the caller's favorites.
// GET /api/v1/favorite/:movie_id
func (h *Handler) FavoriteStatus(c fiber.Ctx) error {
	movieID := fiber.Params[int](c, "movie_id")
	if movieID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	favorite, err := h.svc.IsFavorite(auth.UserID(c), movieID)
	if err != nil {
		slog.Error("failed to check favorite", "user_id", auth.UserID(c), "movie_id", movieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to check favorite"})
	}

	return c.JSON(fiber.Map{"favorite": favorite})
}

// ListFavorites resolves the caller's favorites to full movie records.
// GET /api/v1/favorite
func (h *Handler) ListFavorites(c fiber.Ctx) error {
	movies, err := h.svc.ListFavorites(c.Context(), auth.Token(c), auth.UserID(c))
	if err != nil {
		slog.Error("failed to list favorites", "user_id", auth.UserID(c), "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(MovieListResponse{Results: movies})
}
