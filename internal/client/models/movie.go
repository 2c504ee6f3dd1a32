package models

// Movie is catalog data passed through unchanged. PosterPath is relative to
// the image host, e.g. "/abc.jpg".
type Movie struct {
	ID          int     `json:"movie_id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	Rating      float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// SearchMetric is one trending counter, stored in the metrics collection.
type SearchMetric struct {
	ID         string `json:"-"`
	Revision   int64  `json:"-"`
	SearchTerm string `json:"search_term"`
	MovieID    int    `json:"movie_id"`
	Title      string `json:"title"`
	PosterURL  string `json:"poster_url"`
	Count      int64  `json:"count"`
}

// SavedMovieRecord is one (user, movie) row of the saved_movies collection.
type SavedMovieRecord struct {
	ID          string  `json:"-"`
	UserID      string  `json:"user_id"`
	MovieID     int     `json:"movie_id"`
	Title       string  `json:"title"`
	PosterURL   string  `json:"poster_url"`
	Rating      float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// SavedMovie is a saved record in display shape: SavedID is the remote
// record id used to remove it again.
type SavedMovie struct {
	Movie
	SavedID string
}
