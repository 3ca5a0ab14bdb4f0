package user

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(NewRepository(db), testSecret, time.Hour), mock
}

func userColumns() []string {
	return []string{"user_id", "username", "password_hash", "is_active", "is_admin", "created_at"}
}

func userRow(userID int, username, passwordHash string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns()).
		AddRow(userID, username, passwordHash, true, false, time.Now())
}

func TestSignUp(t *testing.T) {
	t.Run("rejects an empty username", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.SignUp(SignUpRequest{Username: "", Password: "pw"})
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("rejects a username over 50 characters", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.SignUp(SignUpRequest{Username: strings.Repeat("a", 51), Password: "pw"})
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.SignUp(SignUpRequest{Username: "alice", Password: ""})
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("stores a bcrypt hash, never the plaintext", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnRows(userRow(1, "alice", "$2a$10$hash"))

		u, err := svc.SignUp(SignUpRequest{Username: "alice", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a taken username is a validation error", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := svc.SignUp(SignUpRequest{Username: "alice", Password: "pw"})
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials yield a parseable token", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("alice").
			WillReturnRows(userRow(1, "alice", string(hash)))

		token, u, err := svc.Login(LoginRequest{Username: "alice", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, 1, u.UserID)

		claims, err := auth.ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong password gives the same error as an unknown user", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("alice").
			WillReturnRows(userRow(1, "alice", string(hash)))

		_, _, wrongPassword := svc.Login(LoginRequest{Username: "alice", Password: "nope"})
		require.ErrorIs(t, wrongPassword, apierrs.ErrValidation)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		_, _, unknownUser := svc.Login(LoginRequest{Username: "ghost", Password: "nope"})
		require.ErrorIs(t, unknownUser, apierrs.ErrValidation)

		assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	})
}

func TestAddFriend(t *testing.T) {
	t.Run("rejects adding yourself by username", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.AddFriend(1, "alice", "alice")
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("rejects adding yourself even under a resolved ID", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("alice2").
			WillReturnRows(userRow(1, "alice2", "hash"))

		err := svc.AddFriend(1, "alice", "alice2")
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("unknown friend username is not found", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		err := svc.AddFriend(1, "alice", "ghost")
		assert.ErrorIs(t, err, apierrs.ErrNotFound)
	})

	t.Run("writes both directions of the edge in one transaction", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("bob").
			WillReturnRows(userRow(2, "bob", "hash"))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO friends_with").
			WithArgs(1, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO friends_with").
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.AddFriend(1, "alice", "bob"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemoveFriend(t *testing.T) {
	t.Run("removing a non-friend is a validation error", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("bob").
			WillReturnRows(userRow(2, "bob", "hash"))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := svc.RemoveFriend(1, "alice", "bob")
		assert.ErrorIs(t, err, apierrs.ErrValidation)
	})

	t.Run("deletes both directions of the edge in one transaction", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT user_id, username, password_hash").
			WithArgs("bob").
			WillReturnRows(userRow(2, "bob", "hash"))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM friends_with").
			WithArgs(1, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM friends_with").
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.RemoveFriend(1, "alice", "bob"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetFriends(t *testing.T) {
	t.Run("a loner gets an empty list, not null", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT u.user_id, u.username").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username"}))

		friends, err := svc.GetFriends(1)
		require.NoError(t, err)
		assert.Equal(t, []Friend{}, friends)
	})

	t.Run("friends come back ordered by user ID", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery("SELECT u.user_id, u.username").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "username"}).
				AddRow(2, "bob").
				AddRow(5, "carol"))

		friends, err := svc.GetFriends(1)
		require.NoError(t, err)
		require.Len(t, friends, 2)
		assert.Equal(t, "bob", friends[0].Username)
		assert.Equal(t, "carol", friends[1].Username)
	})
}
