package user

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
)

// Migrations holds the schema owned by the user service. The friendship
// relation is a true edge set: both directions of an edge are stored as
// rows and the composite primary key makes duplicate adds a no-op.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_active BOOLEAN DEFAULT TRUE,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS friends_with (
		user_id INTEGER NOT NULL REFERENCES users(user_id),
		friend_id INTEGER NOT NULL REFERENCES users(user_id),
		created_at TIMESTAMP DEFAULT NOW(),
		PRIMARY KEY (user_id, friend_id),
		CHECK (user_id <> friend_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friends_with_user_id ON friends_with(user_id)`,
}

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(username, passwordHash string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		INSERT INTO users (username, password_hash) VALUES ($1, $2)
		RETURNING user_id, username, password_hash, is_active, is_admin, created_at
	`, username, passwordHash).Scan(
		&u.UserID, &u.Username, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, apierrs.Invalid("username %q is already taken", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns an account by username.
func (r *Repository) GetUserByUsername(username string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT user_id, username, password_hash, is_active, is_admin, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&u.UserID, &u.Username, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierrs.NotFound("user with username '%s' not found", username)
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// GetUserByID returns an account by ID.
func (r *Repository) GetUserByID(userID int) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT user_id, username, password_hash, is_active, is_admin, created_at
		FROM users WHERE user_id = $1
	`, userID).Scan(
		&u.UserID, &u.Username, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierrs.NotFound("user %d not found", userID)
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// AddFriend writes both directions of the edge in one transaction so the
// relation is never visible in an asymmetric state. Re-adding an existing
// edge is a no-op.
func (r *Repository) AddFriend(userID, friendID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin add friend: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range [][2]int{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.Exec(`
			INSERT INTO friends_with (user_id, friend_id) VALUES ($1, $2)
			ON CONFLICT (user_id, friend_id) DO NOTHING
		`, pair[0], pair[1]); err != nil {
			return fmt.Errorf("insert friend edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add friend: %w", err)
	}
	return nil
}

// RemoveFriend deletes both directions of the edge in one transaction.
func (r *Repository) RemoveFriend(userID, friendID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove friend: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range [][2]int{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.Exec(`
			DELETE FROM friends_with WHERE user_id = $1 AND friend_id = $2
		`, pair[0], pair[1]); err != nil {
			return fmt.Errorf("delete friend edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove friend: %w", err)
	}
	return nil
}

// GetFriends returns all users adjacent to the given user.
func (r *Repository) GetFriends(userID int) ([]Friend, error) {
	rows, err := r.db.Query(`
		SELECT u.user_id, u.username
		FROM friends_with fw
		JOIN users u ON u.user_id = fw.friend_id
		WHERE fw.user_id = $1
		ORDER BY u.user_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	var friends []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// IsFriend reports whether an edge between the two users exists.
func (r *Repository) IsFriend(userID, friendID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM friends_with WHERE user_id = $1 AND friend_id = $2
		)
	`, userID, friendID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}
