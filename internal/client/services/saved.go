package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

// ErrAlreadySaved is returned when the (user, movie) pair is already stored.
var ErrAlreadySaved = fmt.Errorf("%w: movie already saved", client.ErrConflict)

// savedPageSize is the largest page the server hands out.
const savedPageSize = 100

// SavedOptions configures a SavedMovieStore. Collection defaults to
// saved_movies.
type SavedOptions struct {
	Collection    string
	PosterBaseURL string
}

// SavedMovieStore maps save/remove intents to remote mutations. Duplicate
// detection is left to the server's (user_id, movie_id) uniqueness.
type SavedMovieStore struct {
	client  client.Client
	session IdentitySource
	logger  logging.Logger
	opts    SavedOptions

	mu        sync.Mutex
	onRemoved []func(ctx context.Context, savedID string)
}

// NewSavedMovieStore returns a store writing through c. Every operation
// requires an identity from session.
func NewSavedMovieStore(c client.Client, session IdentitySource, l logging.Logger, opts SavedOptions) *SavedMovieStore {
	if opts.Collection == "" {
		opts.Collection = common.CollectionSavedMovies
	}
	return &SavedMovieStore{
		client:  c,
		session: session,
		logger:  l.With("module", "saved"),
		opts:    opts,
	}
}

// OnRemoved registers fn to run after every successful Remove, so views
// showing the saved list can refetch. fn receives the context Remove was
// called with.
func (s *SavedMovieStore) OnRemoved(fn func(ctx context.Context, savedID string)) {
	s.mu.Lock()
	s.onRemoved = append(s.onRemoved, fn)
	s.mu.Unlock()
}

// Save stores movie for userID without checking for an existing record.
func (s *SavedMovieStore) Save(ctx context.Context, userID string, movie models.Movie) (*models.SavedMovie, error) {
	if _, err := s.session.RequireIdentity(); err != nil {
		return nil, err
	}

	fields, err := models.FieldsOf(models.SavedMovieRecord{
		UserID:      userID,
		MovieID:     movie.ID,
		Title:       movie.Title,
		PosterURL:   PosterURL(s.opts.PosterBaseURL, movie.PosterPath),
		Rating:      movie.Rating,
		ReleaseDate: movie.ReleaseDate,
	})
	if err != nil {
		return nil, err
	}

	doc, err := s.client.Create(ctx, s.opts.Collection, fields)
	if err != nil {
		if errors.Is(err, client.ErrConflict) {
			return nil, ErrAlreadySaved
		}
		return nil, fmt.Errorf("save movie %d: %w", movie.ID, err)
	}

	s.logger.Info(ctx, "movie saved", "movie_id", movie.ID, "saved_id", doc.ID)
	return &models.SavedMovie{Movie: movie, SavedID: doc.ID}, nil
}

// Remove deletes a saved record by its remote id. A record that is already
// gone counts as removed.
func (s *SavedMovieStore) Remove(ctx context.Context, savedID string) error {
	if _, err := s.session.RequireIdentity(); err != nil {
		return err
	}

	err := s.client.Delete(ctx, s.opts.Collection, savedID)
	switch {
	case errors.Is(err, client.ErrNotFound):
		s.logger.Debug(ctx, "saved movie already removed", "saved_id", savedID)
	case err != nil:
		return fmt.Errorf("remove saved movie %s: %w", savedID, err)
	}

	s.mu.Lock()
	listeners := append([]func(context.Context, string){}, s.onRemoved...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ctx, savedID)
	}
	return nil
}

// ListSaved returns the user's saved movies in display shape, with poster
// URLs turned back into catalog-relative paths. Fetch failures are returned.
func (s *SavedMovieStore) ListSaved(ctx context.Context, userID string) ([]models.SavedMovie, error) {
	if _, err := s.session.RequireIdentity(); err != nil {
		return nil, err
	}

	docs, err := s.listAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved movies: %w", err)
	}

	out := make([]models.SavedMovie, 0, len(docs))
	for _, doc := range docs {
		var rec models.SavedMovieRecord
		if err := doc.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, models.SavedMovie{
			Movie: models.Movie{
				ID:          rec.MovieID,
				Title:       rec.Title,
				PosterPath:  PosterPath(s.opts.PosterBaseURL, rec.PosterURL),
				Rating:      rec.Rating,
				ReleaseDate: rec.ReleaseDate,
			},
			SavedID: doc.ID,
		})
	}
	return out, nil
}

// listAll pages through the user's records until a short page comes back.
func (s *SavedMovieStore) listAll(ctx context.Context, userID string) ([]*models.Document, error) {
	var all []*models.Document
	for {
		page, err := s.client.List(ctx, s.opts.Collection, models.Query{
			Filters: []models.Filter{models.Eq("user_id", userID)},
			Limit:   savedPageSize,
			Offset:  len(all),
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < savedPageSize {
			return all, nil
		}
	}
}

// Count is the number of movies userID has saved.
func (s *SavedMovieStore) Count(ctx context.Context, userID string) (int, error) {
	movies, err := s.ListSaved(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(movies), nil
}
