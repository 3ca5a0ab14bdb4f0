package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(NewRepository(db), nil), mock
}

func movieColumns() []string {
	return []string{"movie_id", "movie_name", "rating", "runtime", "meta_score", "plot"}
}

func genreColumns() []string {
	return []string{"movie_id", "genre_id", "genre_name"}
}

func TestListTopRated(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by rating descending with genres attached", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("ORDER BY rating DESC, movie_id ASC").
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows(movieColumns()).
				AddRow(3, "The Godfather", 9.2, 175, 100, "An aging patriarch hands over his empire.").
				AddRow(1, "Pulp Fiction", 8.9, 154, 95, "Interwoven tales of crime."))
		mock.ExpectQuery("FROM has_genre").
			WillReturnRows(sqlmock.NewRows(genreColumns()).
				AddRow(3, 1, "Crime").
				AddRow(3, 2, "Drama"))

		movies, err := svc.ListTopRated(ctx, 2)
		require.NoError(t, err)
		require.Len(t, movies, 2)
		assert.Equal(t, "The Godfather", movies[0].MovieName)
		assert.GreaterOrEqual(t, movies[0].Rating, movies[1].Rating)
		assert.Len(t, movies[0].Genres, 2)
		assert.Empty(t, movies[1].Genres)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero amount falls back to the default", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("ORDER BY rating DESC, movie_id ASC").
			WithArgs(defaultAmount).
			WillReturnRows(sqlmock.NewRows(movieColumns()))

		movies, err := svc.ListTopRated(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []Movie{}, movies)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("oversized amount is clamped", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("ORDER BY rating DESC, movie_id ASC").
			WithArgs(maxListedMovies).
			WillReturnRows(sqlmock.NewRows(movieColumns()))

		_, err := svc.ListTopRated(ctx, 500)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch is a validation error", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.GetByIDs(ctx, nil)
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("unknown IDs are omitted", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("WHERE movie_id = ANY").
			WillReturnRows(sqlmock.NewRows(movieColumns()).
				AddRow(1, "Pulp Fiction", 8.9, 154, 95, "Interwoven tales of crime."))
		mock.ExpectQuery("FROM has_genre").
			WillReturnRows(sqlmock.NewRows(genreColumns()))

		movies, err := svc.GetByIDs(ctx, []int{1, 9999})
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, 1, movies[0].MovieID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a batch where nothing resolves is not found", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("WHERE movie_id = ANY").
			WillReturnRows(sqlmock.NewRows(movieColumns()))

		_, err := svc.GetByIDs(ctx, []int{9998, 9999})
		assert.ErrorIs(t, err, apierrs.ErrNotFound)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("missing movie is not found", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("FROM movies WHERE movie_id").
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(movieColumns()))

		_, err := svc.GetByID(context.Background(), 42)
		assert.ErrorIs(t, err, apierrs.ErrNotFound)
	})
}

func TestMovieIDsCacheKey(t *testing.T) {
	// The recommender may request the same batch in any order; the key
	// must not depend on it.
	assert.Equal(t, movieIDsCacheKey([]int{3, 1, 2}), movieIDsCacheKey([]int{2, 3, 1}))
	assert.Equal(t, "movies:ids:1,2,3", movieIDsCacheKey([]int{3, 1, 2}))
}
