package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
)

// Migrations holds the schema owned by the catalog service.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		movie_id SERIAL PRIMARY KEY,
		movie_name VARCHAR(255) NOT NULL,
		rating DOUBLE PRECISION NOT NULL CHECK (rating >= 0 AND rating <= 10),
		runtime INTEGER NOT NULL CHECK (runtime > 0 AND runtime <= 1000),
		meta_score INTEGER CHECK (meta_score >= 0 AND meta_score <= 100),
		plot TEXT NOT NULL CHECK (plot <> '')
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		genre_id SERIAL PRIMARY KEY,
		genre_name VARCHAR(100) UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS has_genre (
		movie_id INTEGER NOT NULL REFERENCES movies(movie_id),
		genre_id INTEGER NOT NULL REFERENCES genres(genre_id),
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_rating ON movies(rating DESC)`,
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListTopRated returns up to amount movies ordered by rating descending.
// Ties are broken by ascending movie_id, which for serial keys equals
// catalog insertion order.
func (r *Repository) ListTopRated(amount int) ([]Movie, error) {
	rows, err := r.db.Query(`
		SELECT movie_id, movie_name, rating, runtime, meta_score, plot
		FROM movies
		ORDER BY rating DESC, movie_id ASC
		LIMIT $1
	`, amount)
	if err != nil {
		return nil, fmt.Errorf("query top rated movies: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovies(rows)
	if err != nil {
		return nil, err
	}
	return r.attachGenres(movies)
}

// GetByIDs resolves a batch of movie IDs. Unknown IDs are omitted.
func (r *Repository) GetByIDs(movieIDs []int) ([]Movie, error) {
	rows, err := r.db.Query(`
		SELECT movie_id, movie_name, rating, runtime, meta_score, plot
		FROM movies
		WHERE movie_id = ANY($1)
	`, pq.Array(movieIDs))
	if err != nil {
		return nil, fmt.Errorf("query movies by ids: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovies(rows)
	if err != nil {
		return nil, err
	}
	return r.attachGenres(movies)
}

// GetByID returns a single movie.
func (r *Repository) GetByID(movieID int) (*Movie, error) {
	var m Movie
	err := r.db.QueryRow(`
		SELECT movie_id, movie_name, rating, runtime, meta_score, plot
		FROM movies WHERE movie_id = $1
	`, movieID).Scan(&m.MovieID, &m.MovieName, &m.Rating, &m.Runtime, &m.MetaScore, &m.Plot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierrs.NotFound("movie %d not found", movieID)
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}

	movies, err := r.attachGenres([]Movie{m})
	if err != nil {
		return nil, err
	}
	return &movies[0], nil
}

// CountMovies returns the catalog size.
func (r *Repository) CountMovies() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// CreateMovie inserts a movie with its genres, creating genres as needed.
func (r *Repository) CreateMovie(m Movie) (*Movie, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create movie: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO movies (movie_name, rating, runtime, meta_score, plot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING movie_id
	`, m.MovieName, m.Rating, m.Runtime, m.MetaScore, m.Plot).Scan(&m.MovieID)
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	for i, g := range m.Genres {
		err = tx.QueryRow(`
			INSERT INTO genres (genre_name) VALUES ($1)
			ON CONFLICT (genre_name) DO UPDATE SET genre_name = EXCLUDED.genre_name
			RETURNING genre_id
		`, g.GenreName).Scan(&m.Genres[i].GenreID)
		if err != nil {
			return nil, fmt.Errorf("upsert genre: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO has_genre (movie_id, genre_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, m.MovieID, m.Genres[i].GenreID); err != nil {
			return nil, fmt.Errorf("link genre: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create movie: %w", err)
	}
	return &m, nil
}

func scanMovies(rows *sql.Rows) ([]Movie, error) {
	var movies []Movie
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.MovieID, &m.MovieName, &m.Rating, &m.Runtime, &m.MetaScore, &m.Plot); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// attachGenres loads the genres of the given movies with one query.
func (r *Repository) attachGenres(movies []Movie) ([]Movie, error) {
	if len(movies) == 0 {
		return movies, nil
	}

	ids := make([]int, 0, len(movies))
	index := make(map[int]int, len(movies))
	for i := range movies {
		movies[i].Genres = []Genre{}
		ids = append(ids, movies[i].MovieID)
		index[movies[i].MovieID] = i
	}

	rows, err := r.db.Query(`
		SELECT hg.movie_id, g.genre_id, g.genre_name
		FROM has_genre hg
		JOIN genres g ON g.genre_id = hg.genre_id
		WHERE hg.movie_id = ANY($1)
		ORDER BY g.genre_id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID int
			g       Genre
		)
		if err := rows.Scan(&movieID, &g.GenreID, &g.GenreName); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		if i, ok := index[movieID]; ok {
			movies[i].Genres = append(movies[i].Genres, g)
		}
	}
	return movies, rows.Err()
}
