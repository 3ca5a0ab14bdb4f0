package user

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
)

const maxUsernameLength = 50

type Service struct {
	repo      *Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(repo *Repository, jwtSecret []byte, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// SignUp creates a new account with a bcrypt-hashed password.
func (s *Service) SignUp(req SignUpRequest) (*User, error) {
	if req.Username == "" || len(req.Username) > maxUsernameLength {
		return nil, apierrs.Invalid("username must be between 1 and %d characters", maxUsernameLength)
	}
	if req.Password == "" {
		return nil, apierrs.Invalid("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.CreateUser(req.Username, string(hash))
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(req LoginRequest) (string, *User, error) {
	u, err := s.repo.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, apierrs.ErrNotFound) {
			return "", nil, apierrs.Invalid("invalid username or password")
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, apierrs.Invalid("invalid username or password")
	}

	token, err := auth.NewToken(s.jwtSecret, u.UserID, u.Username, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// GetFriends returns the user's friend set; empty when the user has none.
func (s *Service) GetFriends(userID int) ([]Friend, error) {
	friends, err := s.repo.GetFriends(userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []Friend{}
	}
	return friends, nil
}

// AddFriend adds the user with the given username as a friend.
// Adding yourself is rejected; adding an existing friend is a no-op.
func (s *Service) AddFriend(userID int, username, friendUsername string) error {
	if username == friendUsername {
		return apierrs.Invalid("you cannot add yourself as a friend")
	}

	friend, err := s.repo.GetUserByUsername(friendUsername)
	if err != nil {
		return err
	}
	if friend.UserID == userID {
		return apierrs.Invalid("you cannot add yourself as a friend")
	}

	return s.repo.AddFriend(userID, friend.UserID)
}

// RemoveFriend removes the edge to the user with the given username.
func (s *Service) RemoveFriend(userID int, username, friendUsername string) error {
	if username == friendUsername {
		return apierrs.Invalid("you cannot remove yourself as a friend")
	}

	friend, err := s.repo.GetUserByUsername(friendUsername)
	if err != nil {
		return err
	}

	isFriend, err := s.repo.IsFriend(userID, friend.UserID)
	if err != nil {
		return err
	}
	if !isFriend {
		return apierrs.Invalid("user with username '%s' is not a friend", friendUsername)
	}

	return s.repo.RemoveFriend(userID, friend.UserID)
}
