package grpc

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	clientmodels "github.com/dmitrijs2005/movieshelf/internal/client/models"
	clientservices "github.com/dmitrijs2005/movieshelf/internal/client/services"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const posterBase = "https://image.tmdb.org/t/p/w500"

type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) Load(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, nil
}

func (b *tokenBox) Save(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
	return nil
}

func (b *tokenBox) Clear(context.Context) error { return b.Save(context.Background(), "") }

type device struct {
	remote   *client.GRPCClient
	tokens   *tokenBox
	session  *clientservices.SessionManager
	trending *clientservices.TrendingAggregator
	saved    *clientservices.SavedMovieStore
}

func newDevice(t *testing.T, ts *testServer) *device {
	t.Helper()
	l := logging.NewNopLogger()
	remote := ts.dial(t)
	tokens := &tokenBox{}
	session := clientservices.NewSessionManager(remote, tokens, l)
	return &device{
		remote:  remote,
		tokens:  tokens,
		session: session,
		trending: clientservices.NewTrendingAggregator(remote, session, l, clientservices.TrendingOptions{
			PosterBaseURL: posterBase,
			Attempts:      10,
		}),
		saved: clientservices.NewSavedMovieStore(remote, session, l, clientservices.SavedOptions{
			PosterBaseURL: posterBase,
		}),
	}
}

func TestSync_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	d := newDevice(t, ts)
	ctx := context.Background()

	snap, err := d.session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, clientservices.StateLoggedOut, snap.State)

	id, err := d.session.SignUp(ctx, "ann@example.com", "password1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", id.Name)
	assert.True(t, d.session.Snapshot().LoggedIn())

	_, err = d.session.SignUp(ctx, "ann@example.com", "password1", "Ann")
	assert.ErrorIs(t, err, client.ErrValidation)

	// A fresh process on the same device picks the stored token back up.
	again := newDevice(t, ts)
	again.tokens.token = d.tokens.token
	snap, err = again.session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, clientservices.StateLoggedIn, snap.State)
	assert.Equal(t, id.ID, snap.Identity.ID)

	require.NoError(t, d.session.SignOut(ctx))
	assert.Equal(t, clientservices.StateLoggedOut, d.session.Snapshot().State)
	assert.Empty(t, d.tokens.token)

	who, err := again.session.GetCurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, who)
}

func TestSync_SignInTwiceLeavesOneSession(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	d := newDevice(t, ts)
	ctx := context.Background()

	_, err := d.session.SignUp(ctx, "ann@example.com", "password1", "Ann")
	require.NoError(t, err)
	first := d.remote.Token()

	_, err = d.session.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	probe := ts.dial(t)
	probe.SetToken(first)
	who, err := probe.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, who)
}

func TestSync_TrendingConcurrentSearches(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ctx := context.Background()

	const devices = 5
	var ds []*device
	for i := 0; i < devices; i++ {
		d := newDevice(t, ts)
		email := string(rune('a'+i)) + "@example.com"
		_, err := d.session.SignUp(ctx, email, "password1", "User")
		require.NoError(t, err)
		ds = append(ds, d)
	}

	batman := clientmodels.Movie{ID: 268, Title: "Batman", PosterPath: "/batman.jpg"}

	var wg sync.WaitGroup
	for _, d := range ds {
		wg.Add(1)
		go func(d *device) {
			defer wg.Done()
			d.trending.RecordSearch(ctx, "  BatMan ", batman)
		}(d)
	}
	wg.Wait()

	ds[0].trending.RecordSearch(ctx, "dune", clientmodels.Movie{ID: 438631, Title: "Dune"})

	top := ds[0].trending.GetTrending(ctx, 0)
	require.Len(t, top, 2)
	assert.Equal(t, "batman", top[0].SearchTerm)
	assert.EqualValues(t, devices, top[0].Count)
	assert.Equal(t, posterBase+"/batman.jpg", top[0].PosterURL)
	assert.Equal(t, "dune", top[1].SearchTerm)

	all, err := ds[0].remote.List(ctx, "metrics", clientmodels.Query{
		Filters: []clientmodels.Filter{clientmodels.Eq("search_term", "batman")},
	})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSync_SavedMovies(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	d := newDevice(t, ts)
	ctx := context.Background()

	id, err := d.session.SignUp(ctx, "ann@example.com", "password1", "Ann")
	require.NoError(t, err)

	movie := clientmodels.Movie{ID: 550, Title: "Fight Club", PosterPath: "/fc.jpg", Rating: 8.4, ReleaseDate: "1999-10-15"}

	saved, err := d.saved.Save(ctx, id.ID, movie)
	require.NoError(t, err)

	_, err = d.saved.Save(ctx, id.ID, movie)
	assert.ErrorIs(t, err, clientservices.ErrAlreadySaved)

	list, err := d.saved.ListSaved(ctx, id.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, movie, list[0].Movie)

	var refreshed []string
	d.saved.OnRemoved(func(_ context.Context, savedID string) { refreshed = append(refreshed, savedID) })

	require.NoError(t, d.saved.Remove(ctx, saved.SavedID))
	require.NoError(t, d.saved.Remove(ctx, saved.SavedID))
	assert.Equal(t, []string{saved.SavedID, saved.SavedID}, refreshed)

	n, err := d.saved.Count(ctx, id.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSync_SavedMoviesPastOnePage(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	d := newDevice(t, ts)
	ctx := context.Background()

	id, err := d.session.SignUp(ctx, "ann@example.com", "password1", "Ann")
	require.NoError(t, err)

	for i := 1; i <= 105; i++ {
		_, err := d.saved.Save(ctx, id.ID, clientmodels.Movie{ID: i, Title: "Movie"})
		require.NoError(t, err)
	}

	n, err := d.saved.Count(ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, 105, n)
}
