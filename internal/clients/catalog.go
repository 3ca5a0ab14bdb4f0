package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Genre is a movie genre as served by the catalog service.
type Genre struct {
	GenreID   int    `json:"genre_id"`
	GenreName string `json:"genre_name"`
}

// Movie is the catalog wire shape consumed by the recommenders.
type Movie struct {
	MovieID   int     `json:"movie_id"`
	MovieName string  `json:"movie_name"`
	Rating    float64 `json:"rating"`
	Runtime   int     `json:"runtime"`
	MetaScore *int    `json:"meta_score"`
	Plot      string  `json:"plot"`
	Genres    []Genre `json:"genres"`
}

type movieListResponse struct {
	Results []Movie `json:"results"`
}

// CatalogClient resolves movie IDs to metadata on the catalog service.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(),
	}
}

// GetMoviesByIDs resolves a batch of movie IDs. Unknown IDs are omitted
// from the result; the response order is not guaranteed to match the
// request order.
func (c *CatalogClient) GetMoviesByIDs(ctx context.Context, token string, movieIDs []int) ([]Movie, error) {
	params := url.Values{}
	for _, id := range movieIDs {
		params.Add("movie_ids", strconv.Itoa(id))
	}

	reqURL := c.baseURL + "/api/v1/movies/list?" + params.Encode()

	var resp movieListResponse
	if err := doGet(ctx, c.http, "catalog-service", reqURL, token, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetTopRated returns up to amount movies ordered by catalog rating.
func (c *CatalogClient) GetTopRated(ctx context.Context, token string, amount int) ([]Movie, error) {
	reqURL := c.baseURL + "/api/v1/movies/list?amount=" + strconv.Itoa(amount)

	var resp movieListResponse
	if err := doGet(ctx, c.http, "catalog-service", reqURL, token, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
