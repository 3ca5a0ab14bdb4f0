package user

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
)

type Handler struct {
	svc      *Service
	tokenTTL time.Duration
}

func NewHandler(svc *Service, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, tokenTTL: tokenTTL}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
func (h *Handler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "user-service",
	})
}

// SignUp creates a new account.
// POST /api/v1/users
func (h *Handler) SignUp(c fiber.Ctx) error {
	var req SignUpRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	u, err := h.svc.SignUp(req)
	if err != nil {
		slog.Error("failed to sign up", "username", req.Username, "error", err)
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(u)
}

// Login authenticates and sets the access-token cookie.
// POST /api/v1/login
func (h *Handler) Login(c fiber.Ctx) error {
	var req LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	token, u, err := h.svc.Login(req)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"message": "login successful",
		"user_id": u.UserID,
	})
}

// GetFriends lists the caller's friends.
// GET /api/v1/friends
func (h *Handler) GetFriends(c fiber.Ctx) error {
	friends, err := h.svc.GetFriends(auth.UserID(c))
	if err != nil {
		slog.Error("failed to list friends", "user_id", auth.UserID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list friends"})
	}

	return c.JSON(FriendsResponse{Results: friends})
}

// AddFriend adds a friend by username.
// POST /api/v1/friends/:username
func (h *Handler) AddFriend(c fiber.Ctx) error {
	friendUsername := c.Params("username")

	if err := h.svc.AddFriend(auth.UserID(c), auth.Username(c), friendUsername); err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"message": "friend added successfully"})
}

// RemoveFriend removes a friend by username.
// DELETE /api/v1/friends/:username
func (h *Handler) RemoveFriend(c fiber.Ctx) error {
	friendUsername := c.Params("username")

	if err := h.svc.RemoveFriend(auth.UserID(c), auth.Username(c), friendUsername); err != nil {
		return c.Status(apierrs.StatusCode(err)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"message": "friend removed successfully"})
}
