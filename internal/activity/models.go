package activity

import "time"

// WatchedMovie is a single watch event. A user can watch the same movie
// more than once; every watch gets its own timestamped row.
type WatchedMovie struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	WatchedAt time.Time `json:"watched_at"`
}

// WatchedListResponse wraps a watch-event listing. The newsfeed uses the
// same shape, ordered newest first.
type WatchedListResponse struct {
	Results []WatchedMovie `json:"results"`
}

// ListFilter narrows a watch-history query. Empty fields are not applied.
type ListFilter struct {
	UserIDs  []int
	MovieIDs []int
	// Since is an inclusive lower bound on watched_at.
	Since time.Time
}
