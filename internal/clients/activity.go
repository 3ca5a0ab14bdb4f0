package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WatchedEvent is a watch-history record as served by the activity service.
type WatchedEvent struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	WatchedAt time.Time `json:"watched_at"`
}

type watchedListResponse struct {
	Results []WatchedEvent `json:"results"`
}

// WatchedFilter narrows a watch-history lookup. Zero-valued fields are
// not applied.
type WatchedFilter struct {
	UserIDs  []int
	MovieIDs []int
	// Since is an inclusive lower bound on watched_at.
	Since time.Time
}

// ActivityClient queries watch history on the activity service.
type ActivityClient struct {
	baseURL string
	http    *http.Client
}

func NewActivityClient(baseURL string) *ActivityClient {
	return &ActivityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(),
	}
}

// ListWatched returns the watch events matching the filter.
func (c *ActivityClient) ListWatched(ctx context.Context, token string, filter WatchedFilter) ([]WatchedEvent, error) {
	params := url.Values{}
	for _, id := range filter.UserIDs {
		params.Add("user_id", strconv.Itoa(id))
	}
	for _, id := range filter.MovieIDs {
		params.Add("movie_id", strconv.Itoa(id))
	}
	if !filter.Since.IsZero() {
		params.Set("since", filter.Since.Format(time.RFC3339))
	}

	reqURL := c.baseURL + "/api/v1/watched"
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var resp watchedListResponse
	if err := doGet(ctx, c.http, "activity-service", reqURL, token, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
