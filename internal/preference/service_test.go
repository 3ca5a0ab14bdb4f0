package preference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
)

type stubSocial struct {
	friends []clients.Friend
	err     error
}

func (s *stubSocial) GetFriends(ctx context.Context, token string) ([]clients.Friend, error) {
	return s.friends, s.err
}

type stubHistory struct {
	// byUser maps a user ID to that user's watch events.
	byUser map[int][]clients.WatchedEvent
	err    error
}

func (s *stubHistory) ListWatched(ctx context.Context, token string, filter clients.WatchedFilter) ([]clients.WatchedEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	var events []clients.WatchedEvent
	for _, userID := range filter.UserIDs {
		for _, e := range s.byUser[userID] {
			if len(filter.MovieIDs) > 0 && !containsInt(filter.MovieIDs, e.MovieID) {
				continue
			}
			events = append(events, e)
		}
	}
	return events, nil
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

type stubCatalog struct {
	movies map[int]clients.Movie
	err    error
}

func (s *stubCatalog) GetMoviesByIDs(ctx context.Context, token string, movieIDs []int) ([]clients.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	// Intentionally resolve in reverse request order: the catalog makes no
	// ordering promise, so the recommender must restore its own rank.
	var movies []clients.Movie
	for i := len(movieIDs) - 1; i >= 0; i-- {
		if m, ok := s.movies[movieIDs[i]]; ok {
			movies = append(movies, m)
		}
	}
	return movies, nil
}

func (s *stubCatalog) GetTopRated(ctx context.Context, token string, amount int) ([]clients.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	var movies []clients.Movie
	for _, m := range s.movies {
		movies = append(movies, m)
	}
	if len(movies) > amount {
		movies = movies[:amount]
	}
	return movies, nil
}

func watched(userID int, movieIDs ...int) []clients.WatchedEvent {
	events := make([]clients.WatchedEvent, 0, len(movieIDs))
	for i, movieID := range movieIDs {
		events = append(events, clients.WatchedEvent{
			UserID:    userID,
			MovieID:   movieID,
			WatchedAt: time.Date(2024, 3, 1, 12, i, 0, 0, time.UTC),
		})
	}
	return events
}

func catalogWith(movieIDs ...int) *stubCatalog {
	movies := make(map[int]clients.Movie, len(movieIDs))
	for _, id := range movieIDs {
		movies[id] = clients.Movie{MovieID: id, MovieName: "movie", Rating: 7.5, Runtime: 120, Plot: "plot"}
	}
	return &stubCatalog{movies: movies}
}

func movieIDs(movies []clients.Movie) []int {
	ids := make([]int, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.MovieID)
	}
	return ids
}

func TestRecommendByFriends(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by friend popularity and excludes self-watched", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}, {UserID: 3}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 1, 2),
			3: watched(3, 1, 3),
			1: watched(1, 3),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(1, 2, 3))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, movieIDs(movies))
	})

	t.Run("no friends yields empty list, not an error", func(t *testing.T) {
		svc := NewService(nil, nil, &stubSocial{}, &stubHistory{}, catalogWith())

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("everything already watched yields empty list", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 1, 2),
			1: watched(1, 1, 2),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(1, 2))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("friend fetch failure is propagated, not masked", func(t *testing.T) {
		social := &stubSocial{err: apierrs.Upstream("user-service", 500, "boom")}
		svc := NewService(nil, nil, social, &stubHistory{}, catalogWith())

		_, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		var upstream *apierrs.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, 500, upstream.StatusCode)
	})

	t.Run("watch history failure is propagated", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}}}
		history := &stubHistory{err: apierrs.Upstream("activity-service", 503, "down")}
		svc := NewService(nil, nil, social, history, catalogWith())

		_, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		var upstream *apierrs.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, 503, upstream.StatusCode)
	})

	t.Run("amount bounds the result", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 1, 2, 3, 4, 5),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(1, 2, 3, 4, 5))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 3)
		require.NoError(t, err)
		assert.Len(t, movies, 3)
	})

	t.Run("rewatches by the same friend count once", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}, {UserID: 3}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			// Friend 2 watched movie 5 three times; friend 3 watched 6 once
			// and 5 once, so 5 still outranks 6 only by distinct viewers.
			2: append(watched(2, 5), append(watched(2, 5), watched(2, 5)...)...),
			3: watched(3, 5, 6),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(5, 6))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 6}, movieIDs(movies))
	})

	t.Run("equal popularity breaks ties by ascending movie ID", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 9, 4, 7),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(4, 7, 9))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 7, 9}, movieIDs(movies))
	})

	t.Run("rank order survives unordered catalog responses", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}, {UserID: 3}, {UserID: 4}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 8, 3),
			3: watched(3, 8, 3),
			4: watched(4, 8),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(3, 8))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{8, 3}, movieIDs(movies))
	})

	t.Run("adjacent results never increase in popularity", func(t *testing.T) {
		social := &stubSocial{friends: []clients.Friend{{UserID: 2}, {UserID: 3}, {UserID: 4}}}
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{
			2: watched(2, 1, 2, 3),
			3: watched(3, 2, 3),
			4: watched(4, 3),
		}}
		svc := NewService(nil, nil, social, history, catalogWith(1, 2, 3))

		movies, err := svc.RecommendByFriends(ctx, "token", 1, 10)
		require.NoError(t, err)
		require.Equal(t, []int{3, 2, 1}, movieIDs(movies))
	})
}

func TestRate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a rating for an unwatched movie", func(t *testing.T) {
		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{}}
		svc := NewService(nil, nil, &stubSocial{}, history, catalogWith())

		_, err := svc.Rate(ctx, "token", 1, 42, RateRequest{Rating: 8})
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("rejects out-of-range rating values", func(t *testing.T) {
		svc := NewService(nil, nil, &stubSocial{}, &stubHistory{}, catalogWith())

		for _, value := range []float64{0, -1, 10.5} {
			_, err := svc.Rate(ctx, "token", 1, 42, RateRequest{Rating: value})
			assert.ErrorIs(t, err, apierrs.ErrValidation, "rating %v", value)
		}
	})

	t.Run("failed watched lookup is propagated", func(t *testing.T) {
		history := &stubHistory{err: apierrs.Upstream("activity-service", 500, "boom")}
		svc := NewService(nil, nil, &stubSocial{}, history, catalogWith())

		_, err := svc.Rate(ctx, "token", 1, 42, RateRequest{Rating: 8})
		var upstream *apierrs.UpstreamError
		assert.ErrorAs(t, err, &upstream)
	})

	t.Run("replaces the prior rating in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM ratings").
			WithArgs(1, 42).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO ratings").
			WithArgs(8.5, "great", 1, 42).
			WillReturnRows(sqlmock.NewRows(
				[]string{"rating_id", "rating", "review", "user_id", "movie_id"},
			).AddRow(7, 8.5, "great", 1, 42))
		mock.ExpectCommit()

		history := &stubHistory{byUser: map[int][]clients.WatchedEvent{1: watched(1, 42)}}
		svc := NewService(NewRepository(db), nil, &stubSocial{}, history, catalogWith())

		rating, err := svc.Rate(ctx, "token", 1, 42, RateRequest{Rating: 8.5, Review: "great"})
		require.NoError(t, err)
		assert.Equal(t, 7, rating.RatingID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostReview(t *testing.T) {
	t.Run("unknown rating is not found and nothing is inserted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT rating_id, rating, review, user_id, movie_id").
			WithArgs(9999).
			WillReturnRows(sqlmock.NewRows([]string{"rating_id", "rating", "review", "user_id", "movie_id"}))

		svc := NewService(NewRepository(db), nil, &stubSocial{}, &stubHistory{}, catalogWith())

		_, err = svc.PostReview(1, 9999, true)
		assert.ErrorIs(t, err, apierrs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a disagreement vote is stored as false", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT rating_id, rating, review, user_id, movie_id").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(
				[]string{"rating_id", "rating", "review", "user_id", "movie_id"},
			).AddRow(3, 9.0, "", 2, 11))
		mock.ExpectQuery("INSERT INTO rating_reviews").
			WithArgs(1, 3, false).
			WillReturnRows(sqlmock.NewRows(
				[]string{"rating_review_id", "user_id", "rating_id", "agreed"},
			).AddRow(5, 1, 3, false))

		svc := NewService(NewRepository(db), nil, &stubSocial{}, &stubHistory{}, catalogWith())

		review, err := svc.PostReview(1, 3, false)
		require.NoError(t, err)
		assert.False(t, review.Agreed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFriendRatings(t *testing.T) {
	t.Run("no friends yields empty list", func(t *testing.T) {
		svc := NewService(nil, nil, &stubSocial{}, &stubHistory{}, catalogWith())

		ratings, err := svc.FriendRatings(context.Background(), "token", 0)
		require.NoError(t, err)
		assert.Empty(t, ratings)
	})

	t.Run("friend fetch failure is propagated", func(t *testing.T) {
		social := &stubSocial{err: errors.New("connection refused")}
		svc := NewService(nil, nil, social, &stubHistory{}, catalogWith())

		_, err := svc.FriendRatings(context.Background(), "token", 0)
		assert.Error(t, err)
	})
}

func TestListFavorites(t *testing.T) {
	t.Run("no favorites resolves to empty list without a catalog call", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT movie_id FROM favorite_movies").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"movie_id"}))

		catalog := &stubCatalog{err: errors.New("catalog must not be called")}
		svc := NewService(NewRepository(db), nil, &stubSocial{}, &stubHistory{}, catalog)

		movies, err := svc.ListFavorites(context.Background(), "token", 1)
		require.NoError(t, err)
		assert.Empty(t, movies)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
