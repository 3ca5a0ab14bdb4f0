package preference

// Rating is a user's rating of a movie, optionally with review text.
// At most one current rating exists per (user, movie); re-rating replaces
// the previous row.
type Rating struct {
	RatingID int     `json:"rating_id"`
	Rating   float64 `json:"rating"`
	Review   string  `json:"review"`
	UserID   int     `json:"user_id"`
	MovieID  int     `json:"movie_id"`
}

// RatingListResponse wraps a rating listing.
type RatingListResponse struct {
	Results []Rating `json:"results"`
}

// RateRequest is the request body for rating a movie.
type RateRequest struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

// RatingReview is a peer agreement/disagreement vote on a rating.
// Duplicate votes by the same reviewer are allowed.
type RatingReview struct {
	RatingReviewID int  `json:"rating_review_id"`
	UserID         int  `json:"user_id"`
	RatingID       int  `json:"rating_id"`
	Agreed         bool `json:"agreed"`
}

// RatingReviewListResponse wraps a rating-review listing.
type RatingReviewListResponse struct {
	Results []RatingReview `json:"results"`
}

// ReviewRequest is the request body for reviewing a rating. Agreed is a
// pointer so a submitted false is distinguishable from an absent field.
type ReviewRequest struct {
	Agreed *bool `json:"agreed"`
}

// FavoriteMovie is a membership-only favorite relation.
type FavoriteMovie struct {
	UserID  int `json:"user_id"`
	MovieID int `json:"movie_id"`
}
