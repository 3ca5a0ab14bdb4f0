package clients

import (
	"context"
	"net/http"
	"strings"
)

// Friend is a friendship edge endpoint as served by the user service.
type Friend struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

type friendsResponse struct {
	Results []Friend `json:"results"`
}

// SocialClient looks up friend sets on the user service.
type SocialClient struct {
	baseURL string
	http    *http.Client
}

func NewSocialClient(baseURL string) *SocialClient {
	return &SocialClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(),
	}
}

// GetFriends returns the caller's friend set. A non-200 response is a hard
// error; callers must not treat it as "no friends".
func (c *SocialClient) GetFriends(ctx context.Context, token string) ([]Friend, error) {
	var resp friendsResponse
	url := c.baseURL + "/api/v1/friends"
	if err := doGet(ctx, c.http, "user-service", url, token, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
