package activity

import (
	"context"
	"time"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/clients"
)

// SocialGraph is the remote friend-set lookup the newsfeed depends on.
// It lives in a different service, so the call can fail independently.
type SocialGraph interface {
	GetFriends(ctx context.Context, token string) ([]clients.Friend, error)
}

type Service struct {
	repo   *Repository
	social SocialGraph
}

func NewService(repo *Repository, social SocialGraph) *Service {
	return &Service{repo: repo, social: social}
}

// MarkWatched records a watch event for the user.
func (s *Service) MarkWatched(userID, movieID int, watchedAt time.Time) (*WatchedMovie, error) {
	return s.repo.MarkWatched(userID, movieID, watchedAt)
}

// IsWatched reports whether the user has watched the movie.
func (s *Service) IsWatched(userID, movieID int) (bool, error) {
	return s.repo.IsWatched(userID, movieID)
}

// ListWatched returns watch events matching the filter.
func (s *Service) ListWatched(filter ListFilter) ([]WatchedMovie, error) {
	events, err := s.repo.ListWatched(filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []WatchedMovie{}
	}
	return events, nil
}

// Newsfeed returns the user's friends' watch events, newest first.
// A user with no friends gets an empty feed. A failed friend lookup is
// propagated with the upstream status; it is never treated as "no friends".
func (s *Service) Newsfeed(ctx context.Context, token string, userID int) ([]WatchedMovie, error) {
	friends, err := s.social.GetFriends(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []WatchedMovie{}, nil
	}

	friendIDs := make([]int, 0, len(friends))
	for _, f := range friends {
		friendIDs = append(friendIDs, f.UserID)
	}

	return s.ListWatched(ListFilter{UserIDs: friendIDs})
}
