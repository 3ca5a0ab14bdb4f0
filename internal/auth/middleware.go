package auth

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	localsUserID   = "auth_user_id"
	localsUsername = "auth_username"
	localsToken    = "auth_token"
)

// Middleware validates the access-token cookie and stores the caller's
// identity in request locals. Paths matching one of publicPrefixes bypass
// authentication.
func Middleware(secret []byte, publicPrefixes ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		tokenString := c.Cookies(CookieName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing access token cookie",
			})
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired access token",
			})
		}

		c.Locals(localsUserID, claims.UserID)
		c.Locals(localsUsername, claims.Username)
		c.Locals(localsToken, tokenString)

		return c.Next()
	}
}

// UserID returns the authenticated caller's user ID, 0 when unauthenticated.
func UserID(c fiber.Ctx) int {
	id, _ := c.Locals(localsUserID).(int)
	return id
}

// Username returns the authenticated caller's username.
func Username(c fiber.Ctx) string {
	name, _ := c.Locals(localsUsername).(string)
	return name
}

// Token returns the raw access token so it can be forwarded to
// collaborator services.
func Token(c fiber.Ctx) string {
	token, _ := c.Locals(localsToken).(string)
	return token
}
