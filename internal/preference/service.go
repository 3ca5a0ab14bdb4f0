package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
)

const (
	defaultAmount           = 10
	maxAmount               = 20
	recommendationsCacheTTL = 5 * time.Minute
)

// SocialGraph is the remote friend-set lookup. A failed lookup is a hard
// error for every operation that depends on it.
type SocialGraph interface {
	GetFriends(ctx context.Context, token string) ([]clients.Friend, error)
}

// WatchHistory is the remote watch-event lookup on the activity service.
type WatchHistory interface {
	ListWatched(ctx context.Context, token string, filter clients.WatchedFilter) ([]clients.WatchedEvent, error)
}

// MovieCatalog resolves movie IDs to metadata.
type MovieCatalog interface {
	GetMoviesByIDs(ctx context.Context, token string, movieIDs []int) ([]clients.Movie, error)
	GetTopRated(ctx context.Context, token string, amount int) ([]clients.Movie, error)
}

type Service struct {
	repo    *Repository
	rdb     *redis.Client
	social  SocialGraph
	history WatchHistory
	catalog MovieCatalog
}

// NewService builds the preference service. rdb may be nil; recommendation
// caching is then disabled.
func NewService(repo *Repository, rdb *redis.Client, social SocialGraph, history WatchHistory, catalog MovieCatalog) *Service {
	return &Service{repo: repo, rdb: rdb, social: social, history: history, catalog: catalog}
}

// RecommendByFriends returns the movies most popular among the user's
// friends that the user has not watched, ordered by the number of distinct
// friends who watched them. Ties are broken by ascending movie ID so the
// ranking is deterministic. A user with no friends, or whose friends
// watched nothing new, gets an empty list.
func (s *Service) RecommendByFriends(ctx context.Context, token string, userID, amount int) ([]clients.Movie, error) {
	amount = clampAmount(amount)

	cacheKey := fmt.Sprintf("recommendations:friends:%d:%d", userID, amount)
	if movies, ok := s.cachedRecommendations(ctx, cacheKey); ok {
		return movies, nil
	}

	friends, err := s.social.GetFriends(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []clients.Movie{}, nil
	}

	friendIDs := make([]int, 0, len(friends))
	for _, f := range friends {
		friendIDs = append(friendIDs, f.UserID)
	}

	friendEvents, err := s.history.ListWatched(ctx, token, clients.WatchedFilter{UserIDs: friendIDs})
	if err != nil {
		return nil, err
	}

	selfEvents, err := s.history.ListWatched(ctx, token, clients.WatchedFilter{UserIDs: []int{userID}})
	if err != nil {
		return nil, err
	}
	selfWatched := make(map[int]struct{}, len(selfEvents))
	for _, e := range selfEvents {
		selfWatched[e.MovieID] = struct{}{}
	}

	candidateIDs := rankByFriendPopularity(friendEvents, selfWatched)
	if len(candidateIDs) > amount {
		candidateIDs = candidateIDs[:amount]
	}
	if len(candidateIDs) == 0 {
		return []clients.Movie{}, nil
	}

	movies, err := s.catalog.GetMoviesByIDs(ctx, token, candidateIDs)
	if err != nil {
		return nil, err
	}

	// The catalog does not promise request order; restore the computed rank.
	rank := make(map[int]int, len(candidateIDs))
	for i, id := range candidateIDs {
		rank[id] = i
	}
	sort.SliceStable(movies, func(i, j int) bool {
		return rank[movies[i].MovieID] < rank[movies[j].MovieID]
	})

	s.cacheRecommendations(ctx, cacheKey, movies)
	return movies, nil
}

// rankByFriendPopularity counts, per movie, the number of distinct friends
// who watched it, drops everything in selfWatched, and returns the movie
// IDs ordered by count descending then movie ID ascending.
func rankByFriendPopularity(events []clients.WatchedEvent, selfWatched map[int]struct{}) []int {
	type viewerMovie struct {
		userID  int
		movieID int
	}

	// A friend rewatching the same movie counts once.
	seen := make(map[viewerMovie]struct{}, len(events))
	counts := make(map[int]int)
	for _, e := range events {
		key := viewerMovie{userID: e.UserID, movieID: e.MovieID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		counts[e.MovieID]++
	}

	candidates := make([]int, 0, len(counts))
	for movieID := range counts {
		if _, watched := selfWatched[movieID]; watched {
			continue
		}
		candidates = append(candidates, movieID)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	return candidates
}

// RecommendTopRated returns up to amount movies ordered by catalog rating.
func (s *Service) RecommendTopRated(ctx context.Context, token string, amount int) ([]clients.Movie, error) {
	movies, err := s.catalog.GetTopRated(ctx, token, clampAmount(amount))
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []clients.Movie{}
	}
	return movies, nil
}

// Rate records a rating for a movie the user has watched, replacing any
// prior rating for the same movie. The watched precondition is checked
// against the activity service.
func (s *Service) Rate(ctx context.Context, token string, userID, movieID int, req RateRequest) (*Rating, error) {
	if req.Rating <= 0 || req.Rating > 10 {
		return nil, apierrs.Invalid("rating must be greater than 0 and at most 10")
	}

	watched, err := s.history.ListWatched(ctx, token, clients.WatchedFilter{
		UserIDs:  []int{userID},
		MovieIDs: []int{movieID},
	})
	if err != nil {
		return nil, err
	}
	if len(watched) == 0 {
		return nil, apierrs.Invalid("movie not watched")
	}

	return s.repo.CreateRating(userID, movieID, req.Rating, req.Review)
}

// DeleteRating removes the user's rating of a movie.
func (s *Service) DeleteRating(userID, movieID int) error {
	return s.repo.DeleteRating(userID, movieID)
}

// FriendRatings returns the ratings posted by the user's friends,
// optionally narrowed to one movie (movieID > 0).
func (s *Service) FriendRatings(ctx context.Context, token string, movieID int) ([]Rating, error) {
	friends, err := s.social.GetFriends(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []Rating{}, nil
	}

	friendIDs := make([]int, 0, len(friends))
	for _, f := range friends {
		friendIDs = append(friendIDs, f.UserID)
	}

	ratings, err := s.repo.ListRatingsByUsers(friendIDs, movieID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []Rating{}
	}
	return ratings, nil
}

// PostReview records an agreement/disagreement vote on a rating. The vote
// value false is as valid as true; field presence is checked by the
// handler. Duplicate votes by the same reviewer are allowed.
func (s *Service) PostReview(reviewerID, ratingID int, agreed bool) (*RatingReview, error) {
	if _, err := s.repo.GetRating(ratingID); err != nil {
		return nil, err
	}
	return s.repo.CreateRatingReview(reviewerID, ratingID, agreed)
}

// GetReviews returns all review votes on a rating; empty when none exist.
func (s *Service) GetReviews(ratingID int) ([]RatingReview, error) {
	reviews, err := s.repo.ListReviewsByRating(ratingID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []RatingReview{}
	}
	return reviews, nil
}

// MyReviews returns the review votes posted by the user.
func (s *Service) MyReviews(userID int) ([]RatingReview, error) {
	reviews, err := s.repo.ListReviewsByUser(userID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []RatingReview{}
	}
	return reviews, nil
}

// AddFavorite adds a movie to the user's favorites; adding twice is a no-op.
func (s *Service) AddFavorite(userID, movieID int) (bool, error) {
	return s.repo.AddFavorite(userID, movieID)
}

// RemoveFavorite removes a movie from the user's favorites.
func (s *Service) RemoveFavorite(userID, movieID int) (bool, error) {
	return s.repo.RemoveFavorite(userID, movieID)
}

// IsFavorite reports whether the movie is in the user's favorites.
func (s *Service) IsFavorite(userID, movieID int) (bool, error) {
	return s.repo.IsFavorite(userID, movieID)
}

// ListFavorites resolves the user's favorite movies via the catalog.
func (s *Service) ListFavorites(ctx context.Context, token string, userID int) ([]clients.Movie, error) {
	ids, err := s.repo.ListFavoriteMovieIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []clients.Movie{}, nil
	}
	return s.catalog.GetMoviesByIDs(ctx, token, ids)
}

func clampAmount(amount int) int {
	if amount <= 0 {
		return defaultAmount
	}
	if amount > maxAmount {
		return maxAmount
	}
	return amount
}

func (s *Service) cachedRecommendations(ctx context.Context, key string) ([]clients.Movie, bool) {
	if s.rdb == nil {
		return nil, false
	}
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var movies []clients.Movie
	if json.Unmarshal([]byte(cached), &movies) != nil {
		return nil, false
	}
	slog.Debug("recommendations cache hit", "key", key)
	return movies, true
}

func (s *Service) cacheRecommendations(ctx context.Context, key string, movies []clients.Movie) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(movies)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, recommendationsCacheTTL).Err(); err != nil {
		slog.Error("failed to cache recommendations", "key", key, "error", err)
	}
}
