package catalog

// Genre is a movie genre.
type Genre struct {
	GenreID   int    `json:"genre_id"`
	GenreName string `json:"genre_name"`
}

// Movie is a catalog entry. The rating here is the catalog's audience
// rating (0-10), distinct from user ratings kept by the preference service.
type Movie struct {
	MovieID   int     `json:"movie_id"`
	MovieName string  `json:"movie_name"`
	Rating    float64 `json:"rating"`
	Runtime   int     `json:"runtime"`
	MetaScore *int    `json:"meta_score"`
	Plot      string  `json:"plot"`
	Genres    []Genre `json:"genres"`
}

// MovieListResponse wraps a movie listing.
type MovieListResponse struct {
	Results []Movie `json:"results"`
}
