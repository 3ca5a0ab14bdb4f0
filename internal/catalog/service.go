package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
)

const (
	listCacheTTL    = 10 * time.Minute
	defaultAmount   = 10
	maxListedMovies = 20
)

type Service struct {
	repo *Repository
	rdb  *redis.Client
}

// NewService builds the catalog service. rdb may be nil; caching is then
// disabled.
func NewService(repo *Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, rdb: rdb}
}

// ListTopRated returns up to amount movies ordered by catalog rating
// descending. Fewer movies than requested is not an error.
func (s *Service) ListTopRated(ctx context.Context, amount int) ([]Movie, error) {
	if amount <= 0 {
		amount = defaultAmount
	}
	if amount > maxListedMovies {
		amount = maxListedMovies
	}

	cacheKey := fmt.Sprintf("movies:top:%d", amount)
	if movies, ok := s.cachedMovies(ctx, cacheKey); ok {
		return movies, nil
	}

	movies, err := s.repo.ListTopRated(amount)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []Movie{}
	}

	s.cacheMovies(ctx, cacheKey, movies)
	return movies, nil
}

// GetByIDs resolves a batch of movie IDs. Unknown IDs are omitted from
// the result; a batch where nothing resolves is a not-found error.
func (s *Service) GetByIDs(ctx context.Context, movieIDs []int) ([]Movie, error) {
	if len(movieIDs) == 0 {
		return nil, apierrs.Invalid("movie_ids must not be empty")
	}

	cacheKey := movieIDsCacheKey(movieIDs)
	if movies, ok := s.cachedMovies(ctx, cacheKey); ok {
		return movies, nil
	}

	movies, err := s.repo.GetByIDs(movieIDs)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, apierrs.NotFound("movies not found")
	}

	s.cacheMovies(ctx, cacheKey, movies)
	return movies, nil
}

// GetByID returns one movie.
func (s *Service) GetByID(ctx context.Context, movieID int) (*Movie, error) {
	return s.repo.GetByID(movieID)
}

func (s *Service) cachedMovies(ctx context.Context, key string) ([]Movie, bool) {
	if s.rdb == nil {
		return nil, false
	}
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var movies []Movie
	if json.Unmarshal([]byte(cached), &movies) != nil {
		return nil, false
	}
	slog.Debug("movie list cache hit", "key", key)
	return movies, true
}

func (s *Service) cacheMovies(ctx context.Context, key string, movies []Movie) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(movies)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, listCacheTTL).Err(); err != nil {
		slog.Error("failed to cache movie list", "key", key, "error", err)
	}
}

func movieIDsCacheKey(movieIDs []int) string {
	sorted := make([]int, len(movieIDs))
	copy(sorted, movieIDs)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "movies:ids:" + strings.Join(parts, ",")
}
