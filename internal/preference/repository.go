package preference

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
)

// Migrations holds the schema owned by the preference service.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS ratings (
		rating_id SERIAL PRIMARY KEY,
		rating DOUBLE PRECISION NOT NULL CHECK (rating > 0 AND rating <= 10),
		review TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL,
		movie_id INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user_movie ON ratings(user_id, movie_id)`,
	`CREATE TABLE IF NOT EXISTS rating_reviews (
		rating_review_id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		rating_id INTEGER NOT NULL REFERENCES ratings(rating_id) ON DELETE CASCADE,
		agreed BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rating_reviews_rating_id ON rating_reviews(rating_id)`,
	`CREATE TABLE IF NOT EXISTS favorite_movies (
		user_id INTEGER NOT NULL,
		movie_id INTEGER NOT NULL,
		PRIMARY KEY (user_id, movie_id)
	)`,
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateRating replaces any prior rating for (user, movie) and inserts the
// new one in a single transaction.
func (r *Repository) CreateRating(userID, movieID int, rating float64, review string) (*Rating, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create rating: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM ratings WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID); err != nil {
		return nil, fmt.Errorf("delete old rating: %w", err)
	}

	var created Rating
	err = tx.QueryRow(`
		INSERT INTO ratings (rating, review, user_id, movie_id)
		VALUES ($1, $2, $3, $4)
		RETURNING rating_id, rating, review, user_id, movie_id
	`, rating, review, userID, movieID).Scan(
		&created.RatingID, &created.Rating, &created.Review, &created.UserID, &created.MovieID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create rating: %w", err)
	}
	return &created, nil
}

// DeleteRating removes the user's rating of a movie.
func (r *Repository) DeleteRating(userID, movieID int) error {
	res, err := r.db.Exec(`
		DELETE FROM ratings WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rating rows affected: %w", err)
	}
	if affected == 0 {
		return apierrs.NotFound("rating does not exist")
	}
	return nil
}

// GetRating returns a rating by ID.
func (r *Repository) GetRating(ratingID int) (*Rating, error) {
	var rating Rating
	err := r.db.QueryRow(`
		SELECT rating_id, rating, review, user_id, movie_id
		FROM ratings WHERE rating_id = $1
	`, ratingID).Scan(
		&rating.RatingID, &rating.Rating, &rating.Review, &rating.UserID, &rating.MovieID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierrs.NotFound("rating not found")
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// ListRatingsByUsers returns the ratings posted by the given users,
// optionally narrowed to one movie (movieID > 0).
func (r *Repository) ListRatingsByUsers(userIDs []int, movieID int) ([]Rating, error) {
	query := `
		SELECT rating_id, rating, review, user_id, movie_id
		FROM ratings WHERE user_id = ANY($1)
	`
	args := []any{pq.Array(userIDs)}
	if movieID > 0 {
		query += ` AND movie_id = $2`
		args = append(args, movieID)
	}
	query += ` ORDER BY rating_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	return scanRatings(rows)
}

// CreateRatingReview appends a review vote; duplicates are allowed.
func (r *Repository) CreateRatingReview(userID, ratingID int, agreed bool) (*RatingReview, error) {
	var review RatingReview
	err := r.db.QueryRow(`
		INSERT INTO rating_reviews (user_id, rating_id, agreed)
		VALUES ($1, $2, $3)
		RETURNING rating_review_id, user_id, rating_id, agreed
	`, userID, ratingID, agreed).Scan(
		&review.RatingReviewID, &review.UserID, &review.RatingID, &review.Agreed,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rating review: %w", err)
	}
	return &review, nil
}

// ListReviewsByRating returns all review votes on a rating.
func (r *Repository) ListReviewsByRating(ratingID int) ([]RatingReview, error) {
	rows, err := r.db.Query(`
		SELECT rating_review_id, user_id, rating_id, agreed
		FROM rating_reviews WHERE rating_id = $1
		ORDER BY rating_review_id
	`, ratingID)
	if err != nil {
		return nil, fmt.Errorf("query rating reviews: %w", err)
	}
	defer rows.Close()

	return scanRatingReviews(rows)
}

// ListReviewsByUser returns all review votes posted by a user.
func (r *Repository) ListReviewsByUser(userID int) ([]RatingReview, error) {
	rows, err := r.db.Query(`
		SELECT rating_review_id, user_id, rating_id, agreed
		FROM rating_reviews WHERE user_id = $1
		ORDER BY rating_review_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rating reviews: %w", err)
	}
	defer rows.Close()

	return scanRatingReviews(rows)
}

// AddFavorite adds a movie to the user's favorites; reports whether the
// membership was newly created.
func (r *Repository) AddFavorite(userID, movieID int) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO favorite_movies (user_id, movie_id) VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("insert favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert favorite rows affected: %w", err)
	}
	return affected > 0, nil
}

// RemoveFavorite removes a favorite membership; reports whether it existed.
func (r *Repository) RemoveFavorite(userID, movieID int) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM favorite_movies WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete favorite rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsFavorite reports whether the movie is in the user's favorites.
func (r *Repository) IsFavorite(userID, movieID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM favorite_movies WHERE user_id = $1 AND movie_id = $2
		)
	`, userID, movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// ListFavoriteMovieIDs returns the IDs of the user's favorite movies.
func (r *Repository) ListFavoriteMovieIDs(userID int) ([]int, error) {
	rows, err := r.db.Query(`
		SELECT movie_id FROM favorite_movies WHERE user_id = $1 ORDER BY movie_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanRatings(rows *sql.Rows) ([]Rating, error) {
	var ratings []Rating
	for rows.Next() {
		var rating Rating
		if err := rows.Scan(
			&rating.RatingID, &rating.Rating, &rating.Review, &rating.UserID, &rating.MovieID,
		); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func scanRatingReviews(rows *sql.Rows) ([]RatingReview, error) {
	var reviews []RatingReview
	for rows.Next() {
		var review RatingReview
		if err := rows.Scan(
			&review.RatingReviewID, &review.UserID, &review.RatingID, &review.Agreed,
		); err != nil {
			return nil, fmt.Errorf("scan rating review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
