package activity

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Migrations holds the schema owned by the activity service. Watch events
// use a surrogate key: the same (user, movie) pair may appear multiple
// times with different timestamps.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS watched_movies (
		watched_movie_id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		movie_id INTEGER NOT NULL,
		watched_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_user_id ON watched_movies(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_movie_id ON watched_movies(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_watched_movies_watched_at ON watched_movies(watched_at DESC)`,
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// MarkWatched records a watch event. A zero watchedAt defaults to now.
func (r *Repository) MarkWatched(userID, movieID int, watchedAt time.Time) (*WatchedMovie, error) {
	if watchedAt.IsZero() {
		watchedAt = time.Now().UTC()
	}

	var w WatchedMovie
	err := r.db.QueryRow(`
		INSERT INTO watched_movies (user_id, movie_id, watched_at)
		VALUES ($1, $2, $3)
		RETURNING user_id, movie_id, watched_at
	`, userID, movieID, watchedAt).Scan(&w.UserID, &w.MovieID, &w.WatchedAt)
	if err != nil {
		return nil, fmt.Errorf("insert watch event: %w", err)
	}
	return &w, nil
}

// IsWatched reports whether the user has at least one watch event for
// the movie.
func (r *Repository) IsWatched(userID, movieID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM watched_movies WHERE user_id = $1 AND movie_id = $2
		)
	`, userID, movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check watched: %w", err)
	}
	return exists, nil
}

// ListWatched returns the watch events matching the filter, newest first.
func (r *Repository) ListWatched(filter ListFilter) ([]WatchedMovie, error) {
	var (
		conditions []string
		args       []any
	)
	if len(filter.UserIDs) > 0 {
		args = append(args, pq.Array(filter.UserIDs))
		conditions = append(conditions, fmt.Sprintf("user_id = ANY($%d)", len(args)))
	}
	if len(filter.MovieIDs) > 0 {
		args = append(args, pq.Array(filter.MovieIDs))
		conditions = append(conditions, fmt.Sprintf("movie_id = ANY($%d)", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conditions = append(conditions, fmt.Sprintf("watched_at >= $%d", len(args)))
	}

	query := `SELECT user_id, movie_id, watched_at FROM watched_movies`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY watched_at DESC, watched_movie_id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query watch events: %w", err)
	}
	defer rows.Close()

	var events []WatchedMovie
	for rows.Next() {
		var w WatchedMovie
		if err := rows.Scan(&w.UserID, &w.MovieID, &w.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan watch event: %w", err)
		}
		events = append(events, w)
	}
	return events, rows.Err()
}
