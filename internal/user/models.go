package user

import "time"

// User is a registered account. The password hash never leaves the service.
type User struct {
	UserID       int       `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Friend is the wire shape of a friendship edge endpoint.
type Friend struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// FriendsResponse wraps a friend listing.
type FriendsResponse struct {
	Results []Friend `json:"results"`
}

// SignUpRequest is the request body for account creation.
type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
