package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/client/services"
)

type fakeSession struct {
	snap     services.Snapshot
	password string
	signUps  []string
	signOuts int
	err      error
}

func (f *fakeSession) Snapshot() services.Snapshot { return f.snap }

func (f *fakeSession) GetCurrentIdentity(context.Context) (*models.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap.Identity, nil
}

func (f *fakeSession) SignUp(ctx context.Context, email, password, name string) (*models.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.signUps = append(f.signUps, email+"/"+name)
	f.password = password
	id := &models.Identity{ID: "u1", Email: email, Name: name}
	f.snap = services.Snapshot{State: services.StateLoggedIn, Identity: id}
	return id, nil
}

func (f *fakeSession) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.password = password
	id := &models.Identity{ID: "u1", Email: email, Name: "Ann"}
	f.snap = services.Snapshot{State: services.StateLoggedIn, Identity: id}
	return id, nil
}

func (f *fakeSession) SignOut(context.Context) error {
	f.signOuts++
	f.snap = services.Snapshot{State: services.StateLoggedOut}
	return f.err
}

type fakeTrending struct {
	terms  []string
	movies []models.Movie
	limits []int
	out    []models.SearchMetric
}

func (f *fakeTrending) RecordSearch(_ context.Context, term string, movie models.Movie) {
	f.terms = append(f.terms, term)
	f.movies = append(f.movies, movie)
}

func (f *fakeTrending) GetTrending(_ context.Context, limit int) []models.SearchMetric {
	f.limits = append(f.limits, limit)
	return f.out
}

type fakeSaved struct {
	movies    []models.SavedMovie
	listeners []func(context.Context, string)
	saveErr   error
	removeErr error
	listErr   error
	listCtx   context.Context
	seq       int
}

func (f *fakeSaved) Save(_ context.Context, _ string, movie models.Movie) (*models.SavedMovie, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	for _, m := range f.movies {
		if m.ID == movie.ID {
			return nil, services.ErrAlreadySaved
		}
	}
	f.seq++
	s := models.SavedMovie{Movie: movie, SavedID: fmt.Sprintf("s%d", f.seq)}
	f.movies = append(f.movies, s)
	return &s, nil
}

func (f *fakeSaved) Remove(ctx context.Context, savedID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	kept := f.movies[:0]
	for _, m := range f.movies {
		if m.SavedID != savedID {
			kept = append(kept, m)
		}
	}
	f.movies = kept
	for _, fn := range f.listeners {
		fn(ctx, savedID)
	}
	return nil
}

func (f *fakeSaved) ListSaved(ctx context.Context, _ string) ([]models.SavedMovie, error) {
	f.listCtx = ctx
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.SavedMovie(nil), f.movies...), nil
}

func (f *fakeSaved) Count(ctx context.Context, userID string) (int, error) {
	m, err := f.ListSaved(ctx, userID)
	return len(m), err
}

func (f *fakeSaved) OnRemoved(fn func(context.Context, string)) {
	f.listeners = append(f.listeners, fn)
}

var errDown = fmt.Errorf("%w: connection refused", client.ErrNetwork)
